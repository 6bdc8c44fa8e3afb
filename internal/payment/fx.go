package payment

import (
	"github.com/carnefacil/carnefacil/internal/payment/domain"
	"github.com/carnefacil/carnefacil/internal/payment/provider/mercadopago"
	"github.com/carnefacil/carnefacil/internal/payment/repository"
	"github.com/carnefacil/carnefacil/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(fx.Annotate(mercadopago.New, fx.As(new(domain.Provider)))),
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
