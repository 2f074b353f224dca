package domain_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"businessboard/backend/database"
	"businessboard/backend/domain"
	"businessboard/backend/models"
)

type fixture struct {
	store  *database.MemoryStore
	svc    *domain.Service
	typeID int64
	userID int64
	newID  int64
	doneID int64
}

func newFixture(t *testing.T, opts domain.Options) fixture {
	t.Helper()
	ctx := context.Background()
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	st := database.NewMemoryStore().WithClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	})
	if opts.Logger == nil {
		logger, _ := test.NewNullLogger()
		opts.Logger = logger
	}
	bt, err := st.InsertBusinessType(ctx, "Technology")
	if err != nil {
		t.Fatalf("insert type: %v", err)
	}
	u, err := st.InsertUser(ctx, models.User{Name: "Ana", Email: "ana@x.com", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	newState, err := st.InsertState(ctx, "New")
	if err != nil {
		t.Fatalf("insert state: %v", err)
	}
	closed, err := st.InsertState(ctx, "Closed")
	if err != nil {
		t.Fatalf("insert state: %v", err)
	}
	return fixture{
		store:  st,
		svc:    domain.NewService(st, opts),
		typeID: bt.ID,
		userID: u.ID,
		newID:  newState.ID,
		doneID: closed.ID,
	}
}

func (f fixture) input(name, value string) models.BusinessInput {
	return models.BusinessInput{
		Name:           models.Some(name),
		BusinessTypeID: models.Some(f.typeID),
		UserID:         models.Some(f.userID),
		StateID:        models.Some(f.newID),
		Value:          models.Some(models.MustMoney(value)),
	}
}

func validationFields(t *testing.T, err error) map[string][]string {
	t.Helper()
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T (%v)", err, err)
	}
	return ve.Fields
}

func TestCreateBusinessKeepsForeignKeys(t *testing.T) {
	f := newFixture(t, domain.Options{})
	b, err := f.svc.CreateBusiness(context.Background(), f.input("Acme Deal", "2500"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.BusinessTypeID != f.typeID || b.UserID != f.userID || b.StateID != f.newID {
		t.Fatalf("foreign keys changed: %+v", b)
	}
	if got := b.Value.String(); got != "2500.00" {
		t.Fatalf("value = %s, want 2500.00", got)
	}
	if b.State == nil || b.State.Name != "New" || b.User == nil || b.BusinessType == nil {
		t.Fatalf("relations not attached: %+v", b)
	}
}

func TestCreateBusinessInvalidReferencePersistsNothing(t *testing.T) {
	cases := []struct {
		field string
		mut   func(*models.BusinessInput)
	}{
		{"business_type_id", func(in *models.BusinessInput) { in.BusinessTypeID = models.Some(int64(999)) }},
		{"user_id", func(in *models.BusinessInput) { in.UserID = models.Some(int64(999)) }},
		{"state_id", func(in *models.BusinessInput) { in.StateID = models.Some(int64(999)) }},
	}
	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			f := newFixture(t, domain.Options{})
			in := f.input("Acme Deal", "10")
			tc.mut(&in)
			_, err := f.svc.CreateBusiness(context.Background(), in)
			fields := validationFields(t, err)
			if got := fields[tc.field]; len(got) != 1 || got[0] != "The selected "+tc.field+" is invalid." {
				t.Fatalf("errors[%s] = %v", tc.field, got)
			}
			list, _ := f.svc.ListBusinesses(context.Background())
			if len(list) != 0 {
				t.Fatalf("expected no businesses, got %d", len(list))
			}
		})
	}
}

func TestCreateBusinessReportsEveryMissingField(t *testing.T) {
	f := newFixture(t, domain.Options{})
	_, err := f.svc.CreateBusiness(context.Background(), models.BusinessInput{})
	fields := validationFields(t, err)
	for _, field := range []string{"name", "business_type_id", "user_id", "state_id", "value"} {
		if got := fields[field]; len(got) != 1 || got[0] != "The "+field+" field is required." {
			t.Errorf("errors[%s] = %v", field, got)
		}
	}
	if err.Error() != "The name field is required. (and 4 more errors)" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestCreateBusinessRejectsBadValues(t *testing.T) {
	f := newFixture(t, domain.Options{})
	for value, want := range map[string]string{
		"-0.01":        "The value field must be at least 0.",
		"-0.004":       "The value field must be at least 0.",
		"100000000.00": "The value field must not be greater than 99999999.99.",
	} {
		_, err := f.svc.CreateBusiness(context.Background(), f.input("Acme", value))
		if got := validationFields(t, err)["value"]; len(got) != 1 || got[0] != want {
			t.Errorf("value %s: errors = %v", value, got)
		}
	}
	if _, err := f.svc.CreateBusiness(context.Background(), f.input("Free", "0")); err != nil {
		t.Fatalf("zero value rejected: %v", err)
	}
}

func TestMoveBusinessChangesOnlyState(t *testing.T) {
	f := newFixture(t, domain.Options{})
	ctx := context.Background()
	before, err := f.svc.CreateBusiness(ctx, f.input("Acme Deal", "2500.00"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	after, err := f.svc.MoveBusiness(ctx, before.ID, f.doneID)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if after.StateID != f.doneID {
		t.Fatalf("state_id = %d, want %d", after.StateID, f.doneID)
	}
	if after.Name != before.Name || !after.Value.Equal(before.Value) ||
		after.BusinessTypeID != before.BusinessTypeID || after.UserID != before.UserID {
		t.Fatalf("move changed other fields: before %+v after %+v", before, after)
	}
	if after.State == nil || after.State.Name != "Closed" {
		t.Fatalf("state relation not refreshed: %+v", after.State)
	}
}

func TestUpdateBusinessExplicitNullIsRequired(t *testing.T) {
	f := newFixture(t, domain.Options{})
	ctx := context.Background()
	b, _ := f.svc.CreateBusiness(ctx, f.input("Acme", "1"))
	_, err := f.svc.UpdateBusiness(ctx, b.ID, models.BusinessInput{Name: models.Optional[string]{Set: true, Null: true}})
	if got := validationFields(t, err)["name"]; len(got) != 1 || got[0] != "The name field is required." {
		t.Fatalf("errors[name] = %v", got)
	}
	cur, _ := f.svc.GetBusiness(ctx, b.ID)
	if cur.Name != "Acme" {
		t.Fatalf("name overwritten: %q", cur.Name)
	}
}

func TestUpdateBusinessEmptyPatchIsNoop(t *testing.T) {
	f := newFixture(t, domain.Options{})
	ctx := context.Background()
	b, _ := f.svc.CreateBusiness(ctx, f.input("Acme", "1"))
	got, err := f.svc.UpdateBusiness(ctx, b.ID, models.BusinessInput{})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !got.UpdatedAt.Equal(b.UpdatedAt) {
		t.Fatalf("empty update touched updated_at")
	}
}

func TestUpdateAndDeleteMissingBusiness(t *testing.T) {
	f := newFixture(t, domain.Options{})
	ctx := context.Background()
	var nf *domain.NotFoundError
	if _, err := f.svc.UpdateBusiness(ctx, 42, models.BusinessInput{StateID: models.Some(f.newID)}); !errors.As(err, &nf) {
		t.Fatalf("update: expected NotFoundError, got %v", err)
	}
	if nf.Message() != "Business not found." {
		t.Fatalf("message = %q", nf.Message())
	}
	if err := f.svc.DeleteBusiness(ctx, 42); !errors.As(err, &nf) {
		t.Fatalf("delete: expected NotFoundError, got %v", err)
	}
}

func TestRenameStateUnchangedIsIdempotent(t *testing.T) {
	f := newFixture(t, domain.Options{})
	ctx := context.Background()
	orig, _ := f.store.State(ctx, f.newID)
	for i := 0; i < 3; i++ {
		st, changed, err := f.svc.RenameState(ctx, f.newID, "  New ")
		if err != nil {
			t.Fatalf("rename: %v", err)
		}
		if changed {
			t.Fatalf("call %d reported changed", i)
		}
		if !st.UpdatedAt.Equal(orig.UpdatedAt) {
			t.Fatalf("updated_at moved from %v to %v", orig.UpdatedAt, st.UpdatedAt)
		}
	}
	st, changed, err := f.svc.RenameState(ctx, f.newID, "Fresh")
	if err != nil || !changed || st.Name != "Fresh" {
		t.Fatalf("rename to new name: %+v changed=%v err=%v", st, changed, err)
	}
}

func TestRenameStateErrors(t *testing.T) {
	f := newFixture(t, domain.Options{})
	ctx := context.Background()
	var ce *domain.ConflictError
	if _, _, err := f.svc.RenameState(ctx, f.newID, "Closed"); !errors.As(err, &ce) || ce.Message != "A state with this name already exists." {
		t.Fatalf("expected name conflict, got %v", err)
	}
	if _, _, err := f.svc.RenameState(ctx, f.newID, " "); validationFields(t, err)["name"][0] != "State name is required." {
		t.Fatalf("unexpected error %v", err)
	}
	var nf *domain.NotFoundError
	if _, _, err := f.svc.RenameState(ctx, 999, "X"); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestDeleteStateBlockedWhileReferenced(t *testing.T) {
	for count := 0; count <= 3; count++ {
		f := newFixture(t, domain.Options{})
		ctx := context.Background()
		for i := 0; i < count; i++ {
			if _, err := f.svc.CreateBusiness(ctx, f.input("Deal", "5")); err != nil {
				t.Fatalf("create: %v", err)
			}
		}
		err := f.svc.DeleteState(ctx, f.newID)
		if count == 0 {
			if err != nil {
				t.Fatalf("delete empty state: %v", err)
			}
			continue
		}
		var iv *domain.InvariantViolation
		if !errors.As(err, &iv) {
			t.Fatalf("count %d: expected InvariantViolation, got %v", count, err)
		}
		if iv.Message != "You cannot delete a state that has businesses associated with it." {
			t.Fatalf("message = %q", iv.Message)
		}
		if _, err := f.store.State(ctx, f.newID); err != nil {
			t.Fatalf("state removed despite dependents")
		}
	}
}

func TestDuplicateNamesConflict(t *testing.T) {
	f := newFixture(t, domain.Options{})
	ctx := context.Background()
	if _, err := f.svc.CreateState(ctx, "Review"); err != nil {
		t.Fatalf("create state: %v", err)
	}
	var ce *domain.ConflictError
	if _, err := f.svc.CreateState(ctx, "Review"); !errors.As(err, &ce) || ce.Field != "name" {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if _, err := f.svc.CreateUser(ctx, models.CreateUserRequest{Name: "Bob", Email: "bob@x.com"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := f.svc.CreateUser(ctx, models.CreateUserRequest{Name: "Bobby", Email: "bob@x.com"}); !errors.As(err, &ce) ||
		ce.Field != "email" || ce.Message != "The email has already been taken." {
		t.Fatalf("expected email conflict, got %v", err)
	}
	f.svc.Wait()
}

func TestCreateUserValidation(t *testing.T) {
	f := newFixture(t, domain.Options{})
	_, err := f.svc.CreateUser(context.Background(), models.CreateUserRequest{Name: "", Email: "not-an-email"})
	fields := validationFields(t, err)
	if fields["name"][0] != "The name field is required." {
		t.Errorf("name: %v", fields["name"])
	}
	if fields["email"][0] != "The email field must be a valid email address." {
		t.Errorf("email: %v", fields["email"])
	}
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []models.User
	err  error
}

func (n *recordingNotifier) SendWelcome(_ context.Context, u models.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, u)
	return n.err
}

func TestCreateUserSendsWelcomeWithHashedPassword(t *testing.T) {
	n := &recordingNotifier{}
	var hashed []string
	f := newFixture(t, domain.Options{
		DefaultPassword: "secret",
		HashPassword: func(pw string) (string, error) {
			hashed = append(hashed, pw)
			return "hashed:" + pw, nil
		},
		Notifier: n,
	})
	u, err := f.svc.CreateUser(context.Background(), models.CreateUserRequest{Name: " Carla ", Email: "carla@x.com"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	f.svc.Wait()
	if u.Name != "Carla" || u.PasswordHash != "hashed:secret" || len(hashed) != 1 || hashed[0] != "secret" {
		t.Fatalf("unexpected user %+v (hashed %v)", u, hashed)
	}
	if len(n.sent) != 1 || n.sent[0].ID != u.ID {
		t.Fatalf("welcome not sent: %+v", n.sent)
	}
}

func TestCreateUserSwallowsNotificationFailure(t *testing.T) {
	logger, hook := test.NewNullLogger()
	n := &recordingNotifier{err: errors.New("smtp down")}
	f := newFixture(t, domain.Options{Notifier: n, Logger: logger})

	u, err := f.svc.CreateUser(context.Background(), models.CreateUserRequest{Name: "Dan", Email: "dan@x.com"})
	if err != nil {
		t.Fatalf("create user failed because of mail: %v", err)
	}
	f.svc.Wait()

	var warned *logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = e
		}
	}
	if warned == nil || warned.Message != "welcome mail not sent" {
		t.Fatalf("expected warn entry, got %+v", hook.AllEntries())
	}
	if warned.Data["user_id"] != u.ID || warned.Data["email"] != "dan@x.com" {
		t.Fatalf("unexpected fields %v", warned.Data)
	}
	users, _ := f.svc.ListUsers(context.Background())
	if len(users) != 2 {
		t.Fatalf("user not persisted: %d users", len(users))
	}
}

func TestListBoardReturnsEverything(t *testing.T) {
	f := newFixture(t, domain.Options{})
	ctx := context.Background()
	if _, err := f.svc.CreateBusiness(ctx, f.input("Acme", "3")); err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := f.svc.ListBoard(ctx)
	if err != nil {
		t.Fatalf("board: %v", err)
	}
	if len(b.Businesses) != 1 || len(b.States) != 2 || len(b.BusinessTypes) != 1 || len(b.Users) != 1 {
		t.Fatalf("unexpected board %+v", b)
	}
}
