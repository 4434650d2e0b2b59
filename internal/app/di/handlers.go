package di

import (
	"errors"

	listinghandler "umarket/internal/feature/listings/transport/handler"
	listingdto "umarket/internal/feature/listings/transport/http/dto"
	listingusecase "umarket/internal/feature/listings/usecase"
	orderhandler "umarket/internal/feature/orders/transport/handler"
	orderdto "umarket/internal/feature/orders/transport/http/dto"
	orderusecase "umarket/internal/feature/orders/usecase"
	reporthandler "umarket/internal/feature/reports/transport/handler"
	reportdto "umarket/internal/feature/reports/transport/http/dto"
	reportusecase "umarket/internal/feature/reports/usecase"
	userhandler "umarket/internal/feature/users/transport/handler"
	userusecase "umarket/internal/feature/users/usecase"
)

// Handlers bundles the HTTP handlers of every feature.
type Handlers struct {
	Listings *listinghandler.ListingHandler
	Orders   *orderhandler.OrderHandler
	Users    *userhandler.UserHandler
	Reports  *reporthandler.ReportHandler
}

// NewHandlers wires usecases and handlers on top of the stores.
// Orders share the listings store so that a purchase invalidates the cached listing.
func NewHandlers(s Stores) Handlers {
	listingUC := listingusecase.NewListingUsecase(s.Listings)
	orderUC := orderusecase.NewOrderUsecase(s.Orders, s.Listings)
	userUC := userusecase.NewUserUsecase(s.Profiles)
	reportUC := reportusecase.NewReportUsecase(s.Reports, s.Profiles, s.Orders)

	return Handlers{
		Listings: listinghandler.NewListingHandler(listingUC),
		Orders:   orderhandler.NewOrderHandler(orderUC),
		Users:    userhandler.NewUserHandler(userUC),
		Reports:  reporthandler.NewReportHandler(reportUC),
	}
}

// RegisterValidators registers the custom binding tags of every feature on gin's validator.
func RegisterValidators() error {
	return errors.Join(
		listingdto.RegisterValidators(),
		orderdto.RegisterValidators(),
		reportdto.RegisterValidators(),
	)
}
