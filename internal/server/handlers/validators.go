package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/mamadbah2/splitpay/internal/domain/models"
)

// RegisterValidators installs the custom binding tags used by request DTOs.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("isodate", isoDate)
}

func isoDate(fl validator.FieldLevel) bool {
	_, err := models.NormalizeDate(fl.Field().String())
	return err == nil
}
