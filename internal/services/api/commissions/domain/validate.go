package domain

import (
	"fmt"

	"rategrid/internal/core/matrix"
	"rategrid/internal/platform/net/http/bind"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// request tags shared by every commissions payload
func init() {
	must(bind.RegisterTag("policy_year", func(fl validator.FieldLevel) bool {
		return matrix.ValidYear(int(fl.Field().Int()))
	}, fmt.Sprintf("{0} must be between %d and %d", matrix.MinYear, matrix.MaxYear)))

	must(bind.RegisterTag("commission_role", func(fl validator.FieldLevel) bool {
		return matrix.Role(fl.Field().Int()).Valid()
	}, "{0} must be one of 3, 4, 5, 6"))

	must(bind.RegisterTag("commission_rate", func(fl validator.FieldLevel) bool {
		// decimals reach tag funcs as float64 through the bind type func
		return matrix.ValidRate(decimal.NewFromFloat(fl.Field().Float()))
	}, "{0} must be between 0 and 100"))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
