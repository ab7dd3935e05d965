package handlers

import (
	"github.com/Jidetireni/firstcare-registration/factory"
	"github.com/Jidetireni/firstcare-registration/internal/config"
	"github.com/Jidetireni/firstcare-registration/internal/validation"
)

type Handlers struct {
	factory *factory.Factory
	config  *config.Config

	validator *validation.Validator
}

func NewHandlers(factory *factory.Factory, config *config.Config, validator *validation.Validator) *Handlers {
	return &Handlers{
		factory:   factory,
		config:    config,
		validator: validator,
	}
}
