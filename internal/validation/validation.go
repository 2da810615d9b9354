// Package validation is the Validation Engine of the API.
//
// Rules are declared with go-playground/validator struct tags. Check runs
// every rule on every field and never stops at the first failure; Validate
// and BindAndValidate turn the result into an *errs.HTTPError whose details
// follow field declaration order.
package validation
