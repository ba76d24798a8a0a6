package validator

import (
	"spendbot/internal/domain"
)

// Registry maps field keys to their validators and remembers registration order, which
// is the order fields are offered to the user.
type Registry struct {
	validators map[domain.FieldKey]FieldValidator
	order      []domain.FieldKey
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{validators: make(map[domain.FieldKey]FieldValidator)}
}

// NewDefaultRegistry returns a registry with the four correctable expense fields:
// total, date, merchant and category.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(amountValidator{})
	r.Register(dateValidator{})
	r.Register(merchantValidator{})
	r.Register(categoryValidator{})
	return r
}

// Register adds a validator to the registry. Re-registering a key replaces the validator
// but keeps its original position.
func (r *Registry) Register(v FieldValidator) {
	if _, exists := r.validators[v.Key()]; !exists {
		r.order = append(r.order, v.Key())
	}
	r.validators[v.Key()] = v
}

// Get returns the validator for a given field key, or nil if not found.
func (r *Registry) Get(key domain.FieldKey) FieldValidator {
	return r.validators[key]
}

// Fields returns the correctable field keys in menu order.
func (r *Registry) Fields() []domain.FieldKey {
	return append([]domain.FieldKey(nil), r.order...)
}

// Validate checks raw against the validator registered for key.
func (r *Registry) Validate(key domain.FieldKey, raw string, categories []domain.Category) (Value, error) {
	v := r.Get(key)
	if v == nil {
		return Value{}, fieldError(key, raw, ErrUnknownField)
	}
	return v.Validate(raw, categories)
}

// Build validates every correction and folds them into a single set. Later corrections
// of the same field win.
func (r *Registry) Build(corrections []domain.Correction, categories []domain.Category) (domain.CorrectionSet, error) {
	var set domain.CorrectionSet
	for _, c := range corrections {
		value, err := r.Validate(c.Field, c.Value, categories)
		if err != nil {
			return domain.CorrectionSet{}, err
		}
		value.ApplyTo(&set)
	}
	return set, nil
}
