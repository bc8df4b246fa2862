package models

import (
	"reflect"

	"github.com/go-playground/validator/v10"
)

/*
RegisterWithValidator register with the validator this custom validation support

	@param v *validator.Validate - the validator to register against
	@return whether successful
*/
func RegisterWithValidator(v *validator.Validate) error {
	if err := v.RegisterValidation(
		"taxonomic_rank", validateTaxonomicRankType,
	); err != nil {
		return err
	}

	if err := v.RegisterValidation(
		"change_event_type", validateChangeEventType,
	); err != nil {
		return err
	}

	return nil
}

func validateTaxonomicRankType(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	switch TaxonomicRankENUMType(fl.Field().String()) {
	case TaxonomicRankSuperkingdom:
		fallthrough
	case TaxonomicRankKingdom:
		fallthrough
	case TaxonomicRankPhylum:
		fallthrough
	case TaxonomicRankClass:
		fallthrough
	case TaxonomicRankOrder:
		fallthrough
	case TaxonomicRankFamily:
		fallthrough
	case TaxonomicRankGenus:
		fallthrough
	case TaxonomicRankSpecies:
		return true
	}
	return false
}

func validateChangeEventType(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	switch ChangeEventTypeENUMType(fl.Field().String()) {
	case ChangeEventTypeSnapshotCreated:
		fallthrough
	case ChangeEventTypeSequencesAdded:
		fallthrough
	case ChangeEventTypeSequencesUpdated:
		fallthrough
	case ChangeEventTypeSequencesDeleted:
		fallthrough
	case ChangeEventTypeSequencesFiltered:
		fallthrough
	case ChangeEventTypeSnapshotLocked:
		return true
	}
	return false
}
