package verifier_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"landregistry/internal/events"
	"landregistry/internal/events/mocks"
	"landregistry/internal/platform/metrics"
	"landregistry/internal/verifier"
	id "landregistry/pkg/domain"
	pkgerrors "landregistry/pkg/domain-errors"
)

const (
	controller = id.Identity("controller")
	vera       = id.Identity("vera")
	mallory    = id.Identity("mallory")
)

type VerifierSuite struct {
	suite.Suite
	ctx      context.Context
	store    *verifier.MemoryStore
	recorder *events.Recorder
	svc      *verifier.Service
}

func TestVerifierSuite(t *testing.T) {
	suite.Run(t, new(VerifierSuite))
}

func (s *VerifierSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = verifier.NewMemoryStore()
	s.recorder = events.NewRecorder()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.svc = verifier.NewService(controller, s.store, s.recorder, metrics.New(prometheus.NewRegistry()), logger)
}

func (s *VerifierSuite) TestControllerAuthorization() {
	s.Run("only the controller may add", func() {
		err := s.svc.Add(s.ctx, mallory, vera)
		s.True(pkgerrors.Is(err, pkgerrors.CodeNotController))

		active, err := s.svc.IsVerifier(s.ctx, vera)
		s.Require().NoError(err)
		s.False(active)
	})

	s.Run("only the controller may remove", func() {
		s.Require().NoError(s.svc.Add(s.ctx, controller, vera))
		err := s.svc.Remove(s.ctx, mallory, vera)
		s.True(pkgerrors.Is(err, pkgerrors.CodeNotController))

		active, err := s.svc.IsVerifier(s.ctx, vera)
		s.Require().NoError(err)
		s.True(active)
	})
}

func (s *VerifierSuite) TestIdempotentToggling() {
	s.Require().NoError(s.svc.Add(s.ctx, controller, vera))
	s.Require().NoError(s.svc.Add(s.ctx, controller, vera))

	active, err := s.svc.IsVerifier(s.ctx, vera)
	s.Require().NoError(err)
	s.True(active)

	members, err := s.svc.List(s.ctx)
	s.Require().NoError(err)
	s.Equal([]id.Identity{vera}, members)

	s.Require().NoError(s.svc.Remove(s.ctx, controller, vera))
	s.Require().NoError(s.svc.Remove(s.ctx, controller, vera))

	active, err = s.svc.IsVerifier(s.ctx, vera)
	s.Require().NoError(err)
	s.False(active)
}

func (s *VerifierSuite) TestNotifications() {
	s.Require().NoError(s.svc.Add(s.ctx, controller, vera))
	s.Require().NoError(s.svc.Remove(s.ctx, controller, vera))

	added := s.recorder.ListByType(events.TypeVerifierAdded)
	s.Require().Len(added, 1)
	s.Equal(vera, added[0].Identity)

	removed := s.recorder.ListByType(events.TypeVerifierRemoved)
	s.Require().Len(removed, 1)
	s.Equal(vera, removed[0].Identity)
}

func (s *VerifierSuite) TestRejectedCallEmitsNothing() {
	_ = s.svc.Add(s.ctx, mallory, vera)
	_ = s.svc.Remove(s.ctx, mallory, vera)
	s.Empty(s.recorder.List())
}

func TestServicePublishesThroughInjectedPublisher(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := mocks.NewMockPublisher(ctrl)
	publisher.EXPECT().Emit(gomock.Any(), gomock.Cond(func(e events.Event) bool {
		return e.Type == events.TypeVerifierAdded && e.Identity == vera
	})).Return(nil)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := verifier.NewService(controller, verifier.NewMemoryStore(), publisher, metrics.New(prometheus.NewRegistry()), logger)

	if err := svc.Add(context.Background(), controller, vera); err != nil {
		t.Fatalf("add verifier: %v", err)
	}
}

func (s *VerifierSuite) TestBlankIdentityRejected() {
	s.Run("add", func() {
		err := s.svc.Add(s.ctx, controller, id.Zero)
		s.True(pkgerrors.Is(err, pkgerrors.CodeBadRequest))
	})

	s.Run("remove", func() {
		err := s.svc.Remove(s.ctx, controller, id.Zero)
		s.True(pkgerrors.Is(err, pkgerrors.CodeBadRequest))
	})

	s.Run("nothing was emitted", func() {
		s.Empty(s.recorder.List())
	})
}
