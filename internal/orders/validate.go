package orders

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type orderItemInput struct {
	Product  string `json:"product" validate:"required,uuid4"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

type createOrderRequest struct {
	OrderItems       []orderItemInput `json:"orderItems" validate:"required,min=1,dive"`
	ShippingAddress1 string           `json:"shippingAddress1" validate:"required"`
	ShippingAddress2 string           `json:"shippingAddress2"`
	City             string           `json:"city" validate:"required"`
	Zip              string           `json:"zip" validate:"required,numeric"`
	Country          string           `json:"country" validate:"required"`
	Phone            string           `json:"phone" validate:"required"`
	User             string           `json:"user" validate:"required,uuid4"`
}

// Rule messages surfaced to the client, keyed by field and failing tag.
// Validation reports the first offending rule only, in field order.
var ruleMessages = map[string]string{
	"OrderItems.required":       "You must specify at least one product and its quantity",
	"OrderItems.min":            "You must specify at least one product and its quantity",
	"Product.required":          "Invalid product identifier",
	"Product.uuid4":             "Invalid product identifier",
	"Quantity.required":         "The quantity must be a positive integer",
	"Quantity.gt":               "The quantity must be a positive integer",
	"ShippingAddress1.required": "The shipping address is required",
	"City.required":             "The city of shipping is required",
	"Zip.required":              "The zip code is required",
	"Zip.numeric":               "Invalid zip code, must be a number type",
	"Country.required":          "The country is required",
	"Phone.required":            "The phone number is required",
	"User.required":             "The user identifier is required",
	"User.uuid4":                "Invalid user identifier",
}

// validateCreateOrder returns the first offending rule's message, or "" when
// every rule passes.
func validateCreateOrder(req *createOrderRequest) string {
	err := validate.Struct(req)
	if err == nil {
		return ""
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return "Invalid request body"
	}

	first := errs[0]
	if msg, ok := ruleMessages[first.Field()+"."+first.Tag()]; ok {
		return msg
	}
	return "Invalid value for field " + first.Field()
}
