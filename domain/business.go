package domain

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"businessboard/backend/models"
)

var businessRefs = []Ref{RefBusinessType, RefUser, RefState}

func (s *Service) ListBusinesses(ctx context.Context) ([]models.Business, error) {
	return s.st.Businesses(ctx)
}

// CreateBusiness validates every field, then inserts. Nothing is written when
// any field fails.
func (s *Service) CreateBusiness(ctx context.Context, in models.BusinessInput) (models.Business, error) {
	ve := &ValidationError{}

	var b models.Business
	if name, ok := in.Name.Get(); ok {
		b.Name = checkName(ve, "name", name)
	} else {
		ve.Add("name", required("name"))
	}

	ids := map[Ref]*int64{RefBusinessType: &b.BusinessTypeID, RefUser: &b.UserID, RefState: &b.StateID}
	inputs := map[Ref]models.Optional[int64]{
		RefBusinessType: in.BusinessTypeID,
		RefUser:         in.UserID,
		RefState:        in.StateID,
	}
	for _, ref := range businessRefs {
		id, ok := inputs[ref].Get()
		if !ok {
			ve.Add(refFields[ref], required(refFields[ref]))
			continue
		}
		if err := s.checkRef(ctx, ve, ref, id); err != nil {
			return models.Business{}, err
		}
		*ids[ref] = id
	}

	if v, ok := in.Value.Get(); ok {
		checkValue(ve, v)
		b.Value = v
	} else {
		ve.Add("value", required("value"))
	}

	if err := ve.Err(); err != nil {
		return models.Business{}, err
	}
	created, err := s.st.InsertBusiness(ctx, b)
	if err != nil {
		return models.Business{}, referenceError(err)
	}
	s.log.WithField("business_id", created.ID).Info("business created")
	return created, nil
}

// UpdateBusiness applies the fields present in the input and keeps the rest.
// Moving a card between columns is an update carrying only state_id.
func (s *Service) UpdateBusiness(ctx context.Context, id int64, in models.BusinessInput) (models.Business, error) {
	current, err := s.st.Business(ctx, id)
	if err != nil {
		return models.Business{}, notFound(err, "Business", id)
	}

	ve := &ValidationError{}
	var p models.BusinessPatch

	if in.Name.Set {
		if in.Name.Null {
			ve.Add("name", required("name"))
		} else {
			name := checkName(ve, "name", in.Name.Value)
			p.Name = &name
		}
	}

	patchIDs := map[Ref]**int64{RefBusinessType: &p.BusinessTypeID, RefUser: &p.UserID, RefState: &p.StateID}
	inputs := map[Ref]models.Optional[int64]{
		RefBusinessType: in.BusinessTypeID,
		RefUser:         in.UserID,
		RefState:        in.StateID,
	}
	for _, ref := range businessRefs {
		opt := inputs[ref]
		if !opt.Set {
			continue
		}
		if opt.Null {
			ve.Add(refFields[ref], required(refFields[ref]))
			continue
		}
		if err := s.checkRef(ctx, ve, ref, opt.Value); err != nil {
			return models.Business{}, err
		}
		v := opt.Value
		*patchIDs[ref] = &v
	}

	if in.Value.Set {
		if in.Value.Null {
			ve.Add("value", required("value"))
		} else {
			checkValue(ve, in.Value.Value)
			v := in.Value.Value
			p.Value = &v
		}
	}

	if err := ve.Err(); err != nil {
		return models.Business{}, err
	}
	if p.Empty() {
		return current, nil
	}
	updated, err := s.st.UpdateBusiness(ctx, id, p)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.Business{}, &NotFoundError{Entity: "Business", ID: id}
		}
		return models.Business{}, referenceError(err)
	}
	if p.StateID != nil && *p.StateID != current.StateID {
		s.log.WithFields(log.Fields{"business_id": id, "from": current.StateID, "to": *p.StateID}).Info("business moved")
	}
	return updated, nil
}

// MoveBusiness places the business in another column without touching any
// other field.
func (s *Service) MoveBusiness(ctx context.Context, id, stateID int64) (models.Business, error) {
	return s.UpdateBusiness(ctx, id, models.BusinessInput{StateID: models.Some(stateID)})
}

func (s *Service) DeleteBusiness(ctx context.Context, id int64) error {
	if err := s.st.DeleteBusiness(ctx, id); err != nil {
		return notFound(err, "Business", id)
	}
	s.log.WithField("business_id", id).Info("business deleted")
	return nil
}

// referenceError turns a store-level missing reference into a field error.
func referenceError(err error) error {
	var mr *MissingReferenceError
	if errors.As(err, &mr) {
		ve := &ValidationError{}
		ve.Add(mr.Field, invalidRef(mr.Field))
		return ve
	}
	return err
}

func notFound(err error, entity string, id int64) error {
	if errors.Is(err, ErrNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return err
}

func (s *Service) GetBusiness(ctx context.Context, id int64) (models.Business, error) {
	b, err := s.st.Business(ctx, id)
	if err != nil {
		return models.Business{}, notFound(err, "Business", id)
	}
	return b, nil
}
