//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"landregistry/internal/registry/models"
	"landregistry/internal/registry/store"
	"landregistry/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *store.PostgresParcelStore
	ctx   context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgresParcelStore(s.pg.DB)
	s.Require().NoError(s.store.Bootstrap(s.ctx))
}

func (s *PostgresStoreSuite) TearDownSuite() {
	_ = s.pg.DB.Close()
	_ = s.pg.Container.Terminate(s.ctx)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateAll(s.ctx))
}

func (s *PostgresStoreSuite) seed(id uint64, location string, docs ...string) models.Parcel {
	parcel := models.Parcel{
		ID:              id,
		Location:        location,
		SurveyReference: "survey-1",
		RegisteredAt:    time.Now().UTC().Truncate(time.Microsecond),
		Documents:       docs,
	}
	s.Require().NoError(s.store.Save(s.ctx, parcel))
	return parcel
}

func (s *PostgresStoreSuite) TestSaveAndGet() {
	saved := s.seed(1, "123 Main St", "docA")

	got, err := s.store.Get(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(saved.Location, got.Location)
	s.Equal(saved.SurveyReference, got.SurveyReference)
	s.False(got.Verified)
	s.WithinDuration(saved.RegisteredAt, got.RegisteredAt, time.Second)

	docs, err := s.store.Documents(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal([]string{"docA"}, docs)
}

func (s *PostgresStoreSuite) TestGetMissing() {
	_, err := s.store.Get(s.ctx, 42)
	s.ErrorIs(err, store.ErrNotFound)

	ok, err := s.store.Exists(s.ctx, 42)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *PostgresStoreSuite) TestLocationIndex() {
	s.seed(1, "123 Main St", "docA")

	id, err := s.store.IDByLocationHash(s.ctx, models.LocationHash("123 Main St"))
	s.Require().NoError(err)
	s.Equal(uint64(1), id)

	_, err = s.store.IDByLocationHash(s.ctx, models.LocationHash("456 Oak Ave"))
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *PostgresStoreSuite) TestSetVerified() {
	s.seed(1, "123 Main St", "docA")

	s.Require().NoError(s.store.SetVerified(s.ctx, 1))
	got, err := s.store.Get(s.ctx, 1)
	s.Require().NoError(err)
	s.True(got.Verified)

	s.ErrorIs(s.store.SetVerified(s.ctx, 42), store.ErrNotFound)
}

func (s *PostgresStoreSuite) TestAppendDocumentPreservesOrder() {
	s.seed(1, "123 Main St", "docA")

	s.Require().NoError(s.store.AppendDocument(s.ctx, 1, "docB"))
	s.Require().NoError(s.store.AppendDocument(s.ctx, 1, "docB"))
	s.Require().NoError(s.store.AppendDocument(s.ctx, 1, "docC"))

	docs, err := s.store.Documents(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal([]string{"docA", "docB", "docB", "docC"}, docs)

	s.ErrorIs(s.store.AppendDocument(s.ctx, 42, "docX"), store.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDocumentsMissingParcel() {
	_, err := s.store.Documents(s.ctx, 42)
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *PostgresStoreSuite) TestMaxID() {
	maxID, err := s.store.MaxID(s.ctx)
	s.Require().NoError(err)
	s.Zero(maxID)

	s.seed(1, "123 Main St", "docA")
	s.seed(7, "456 Oak Ave", "docB")

	maxID, err = s.store.MaxID(s.ctx)
	s.Require().NoError(err)
	s.Equal(uint64(7), maxID)
}
