package booklet

import (
	"github.com/carnefacil/carnefacil/internal/booklet/repository"
	"github.com/carnefacil/carnefacil/internal/booklet/service"
	"go.uber.org/fx"
)

var Module = fx.Module("booklet.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
