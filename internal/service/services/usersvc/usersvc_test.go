package usersvc

import (
	"context"
	"testing"
	"time"

	"github.com/corray333/jersey-shop/internal/dal/memory"
	"github.com/corray333/jersey-shop/internal/service/models/apperr"
	"github.com/corray333/jersey-shop/internal/service/models/lineitem"
	"github.com/corray333/jersey-shop/internal/service/models/order"
	"github.com/corray333/jersey-shop/internal/service/models/page"
	"github.com/corray333/jersey-shop/internal/service/models/user"
	"github.com/corray333/jersey-shop/pkg/auth"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func withUnitOfWork(fn func() unitOfWork) option {
	return func(s *UserService) {
		s.newUOW = fn
	}
}

func newService(t *testing.T) (*UserService, *memory.Store, *auth.Issuer) {
	t.Helper()
	store := memory.New()
	issuer := auth.NewIssuer([]byte("test-key"), time.Hour)
	svc := MustNewUserService(
		WithTokenIssuer(issuer),
		withUnitOfWork(func() unitOfWork { return store.NewUnitOfWork() }),
	)

	return svc, store, issuer
}

func profile(email string) Profile {
	return Profile{
		Firstname: "Zinédine",
		Lastname:  "Zidane",
		Email:     email,
		Telephone: "0612345678",
		Address:   "10 rue de la Paix",
		Zipcode:   "75002",
		Password:  "Marseille-1998!",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, issuer := newService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, profile("ZZ@exemple.fr "))
	require.NoError(t, err)
	assert.Equal(t, user.RoleUser, u.Role)
	assert.Equal(t, "zz@exemple.fr", u.Email)
	assert.NotEqual(t, "Marseille-1998!", u.PasswordHash)

	session, err := svc.Login(ctx, "zz@exemple.fr", "Marseille-1998!")
	require.NoError(t, err)
	require.NotNil(t, session.User.LastLoginAt)

	claims, err := issuer.Parse(session.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "user", claims.Role)

	stored, err := svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestLoginBadCredentials(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, profile("zz@exemple.fr"))
	require.NoError(t, err)

	_, err = svc.Login(ctx, "zz@exemple.fr", "wrong")
	require.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = svc.Login(ctx, "nobody@exemple.fr", "Marseille-1998!")
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newService(t)

	tests := []struct {
		name  string
		edit  func(p *Profile)
		field string
	}{
		{"digits in name", func(p *Profile) { p.Firstname = "Zizou10" }, "firstname"},
		{"bad email", func(p *Profile) { p.Email = "zz" }, "email"},
		{"short phone", func(p *Profile) { p.Telephone = "06123" }, "telephone"},
		{"zipcode letters", func(p *Profile) { p.Zipcode = "7500A" }, "zipcode"},
		{"weak password", func(p *Profile) { p.Password = "password" }, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := profile("zz@exemple.fr")
			tt.edit(&p)

			_, err := svc.Register(context.Background(), p)
			require.ErrorIs(t, err, apperr.ErrInvalidInput)

			var ferr *apperr.FieldError
			require.ErrorAs(t, err, &ferr)
			assert.Equal(t, tt.field, ferr.Field)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, profile("zz@exemple.fr"))
	require.NoError(t, err)
	_, err = svc.Register(ctx, profile("ZZ@exemple.fr"))
	require.ErrorIs(t, err, apperr.ErrConflict)
}

func TestUpdateProfileKeepsRole(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureAdmin(ctx, "admin@exemple.fr", "Admin-Passw0rd!"))

	admin, err := svc.Login(ctx, "admin@exemple.fr", "Admin-Passw0rd!")
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, admin.User.Role)

	p := profile("admin@exemple.fr")
	updated, err := svc.UpdateProfile(ctx, admin.User.ID, p)
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, updated.Role)
	assert.Equal(t, "Zidane", updated.Lastname)

	_, err = svc.Login(ctx, "admin@exemple.fr", p.Password)
	require.NoError(t, err)
}

func TestUpdateUserRole(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, profile("zz@exemple.fr"))
	require.NoError(t, err)

	promoted, err := svc.UpdateUser(ctx, u.ID, profile("zz@exemple.fr"), "admin")
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, promoted.Role)

	demoted, err := svc.UpdateUser(ctx, u.ID, profile("zz@exemple.fr"), "superuser")
	require.NoError(t, err)
	assert.Equal(t, user.RoleUser, demoted.Role)

	_, err = svc.UpdateUser(ctx, 999, profile("x@exemple.fr"), "user")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteUserWithOrders(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, profile("zz@exemple.fr"))
	require.NoError(t, err)

	_, err = store.NewUnitOfWork().DeliveryRepository().Insert(ctx, order.Order{
		UserID:     u.ID,
		Address:    "1 rue",
		Products:   []lineitem.LineItem{{ProductID: 1, Name: "Maillot", UnitPrice: decimal.NewFromInt(1), Quantity: 1}},
		TotalPrice: decimal.NewFromInt(1),
		Status:     order.StatusPending,
	})
	require.NoError(t, err)

	require.ErrorIs(t, svc.DeleteUser(ctx, u.ID), apperr.ErrInUse)

	other, err := svc.Register(ctx, profile("other@exemple.fr"))
	require.NoError(t, err)
	require.NoError(t, svc.DeleteUser(ctx, other.ID))
	_, err = svc.GetUser(ctx, other.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListUsers(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	for _, email := range []string{"a@ex.fr", "b@ex.fr", "c@ex.fr", "d@ex.fr", "e@ex.fr", "f@ex.fr"} {
		_, err := svc.Register(ctx, profile(email))
		require.NoError(t, err)
	}

	all, err := svc.GetUsers(ctx, page.Page{})
	require.NoError(t, err)
	assert.Len(t, all, 6)

	paged, err := svc.GetUsers(ctx, page.Page{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 2)
	assert.Equal(t, "b@ex.fr", paged[0].Email)

	latest, err := svc.GetLatestUsers(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 5)
	assert.Equal(t, "f@ex.fr", latest[0].Email)
}

func TestEnsureAdminIdempotent(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "admin@exemple.fr", "Admin-Passw0rd!"))
	require.NoError(t, svc.EnsureAdmin(ctx, "admin@exemple.fr", "Another-Passw0rd!"))

	all, err := svc.GetUsers(ctx, page.Page{})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.ErrorIs(t, svc.EnsureAdmin(ctx, "new@exemple.fr", "weak"), apperr.ErrInvalidInput)
}
