package category

import (
	"context"
	"regexp"
	"testing"
	"time"

	"storefront-be/internal/apperr"
	"storefront-be/internal/gateway"
	"storefront-be/internal/invalidate"
	"storefront-be/internal/user"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var cols = []string{"id", "name", "slug", "description", "image", "created_at"}

func TestRepository_List(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(gateway.New(db, time.Second))

	sqlMock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, slug, description, image, created_at FROM categories ORDER BY name ASC")).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("c1", "Bags", "bags", nil, nil, time.Now()).
			AddRow("c2", "Shoes", "shoes", "Footwear", "shoes.jpg", time.Now()))

	res, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Nil(t, res[0].Description)
	assert.Equal(t, "Footwear", *res[1].Description)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestRepository_UpdateAndDelete(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(gateway.New(db, time.Second))
	ctx := context.Background()
	name := "Totes"

	sqlMock.ExpectQuery(`(?s)UPDATE categories\s+SET name = COALESCE\(\$2, name\)`).
		WithArgs("c1", name, nil, nil, nil).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("c1", name, "bags", nil, nil, time.Now()))

	c, err := repo.Update(ctx, UpdateCategoryInput{ID: "c1", Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Totes", c.Name)

	sqlMock.ExpectQuery(`DELETE FROM categories WHERE id = \$1 RETURNING`).
		WithArgs("c9").
		WillReturnRows(sqlmock.NewRows(cols))

	_, err = repo.Delete(ctx, "c9")
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context) ([]Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Category), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Category), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, input NewCategoryInput) (*Category, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Category), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, input UpdateCategoryInput) (*Category, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Category), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id string) (*Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Category), args.Error(1)
}

type MockAuthorizer struct {
	mock.Mock
}

func (m *MockAuthorizer) RequireAdmin(ctx context.Context) (uint, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint), args.Error(1)
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	authz := new(MockAuthorizer)
	authz.On("RequireAdmin", ctx).Return(uint(1), nil)
	repo := new(MockRepository)
	svc := NewService(repo, authz, nil)

	repo.On("Create", ctx, mock.MatchedBy(func(in NewCategoryInput) bool {
		return in.Name == "Home Decor" && *in.Slug == "home-decor"
	})).Return(&Category{ID: "c1", Name: "Home Decor", Slug: "home-decor"}, nil)

	res, err := svc.Create(ctx, NewCategoryInput{Name: " Home Decor "})
	require.NoError(t, err)
	assert.Equal(t, "c1", res.Value.ID)
	assert.Equal(t, []invalidate.View{
		invalidate.ViewCategories,
		invalidate.ViewHome,
		invalidate.CategoryPage("home-decor"),
	}, res.Invalidated)

	_, err = svc.Create(ctx, NewCategoryInput{Name: "  "})
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestService_DeniedPerformsNoWrite(t *testing.T) {
	ctx := context.Background()
	authz := new(MockAuthorizer)
	authz.On("RequireAdmin", ctx).Return(uint(0), user.ErrNotAdmin)
	repo := new(MockRepository)
	svc := NewService(repo, authz, nil)
	name := "x"

	_, err := svc.Create(ctx, NewCategoryInput{Name: "Bags"})
	assert.ErrorIs(t, err, apperr.ErrAuthorizationDenied)
	_, err = svc.Update(ctx, UpdateCategoryInput{ID: "c1", Name: &name})
	assert.ErrorIs(t, err, apperr.ErrAuthorizationDenied)
	_, err = svc.Delete(ctx, "c1")
	assert.ErrorIs(t, err, apperr.ErrAuthorizationDenied)

	assert.Empty(t, repo.Calls)
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	authz := new(MockAuthorizer)
	authz.On("RequireAdmin", ctx).Return(uint(1), nil)

	t.Run("NoFields", func(t *testing.T) {
		svc := NewService(new(MockRepository), authz, nil)
		_, err := svc.Update(ctx, UpdateCategoryInput{ID: "c1"})
		assert.ErrorIs(t, err, ErrNoFieldsUpdate)
	})

	t.Run("SlugRename", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, authz, nil)
		slug := "Carry Alls"

		repo.On("GetByID", ctx, "c1").Return(&Category{ID: "c1", Slug: "bags"}, nil)
		repo.On("Update", ctx, mock.Anything).Return(&Category{ID: "c1", Slug: "carry-alls"}, nil)

		res, err := svc.Update(ctx, UpdateCategoryInput{ID: "c1", Slug: &slug})
		require.NoError(t, err)
		assert.Contains(t, res.Invalidated, invalidate.CategoryPage("bags"))
		assert.Contains(t, res.Invalidated, invalidate.CategoryPage("carry-alls"))
	})
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := NewService(repo, new(MockAuthorizer), nil)

	repo.On("List", ctx).Return([]Category{{ID: "c1"}}, nil)

	res, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, res, 1)
}
