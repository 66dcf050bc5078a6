package menu

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/keyshop/internal/dependencies/mocks"
	"github.com/mcoot/keyshop/internal/model"
	"github.com/mcoot/keyshop/internal/testutil"
)

type fakeRefresher struct {
	badgeCalls   int
	listingCalls int
	err          error
}

func (f *fakeRefresher) UpdateCartBadge(ctx context.Context, scope model.ScopeID) (model.Badge, error) {
	f.badgeCalls++
	return model.NewBadge(3), f.err
}

func (f *fakeRefresher) UpdateListingCount(ctx context.Context, scope model.ScopeID) (int, error) {
	f.listingCalls++
	return 2, f.err
}

var (
	customer = model.Session{User: &model.User{Username: "alice"}, Role: model.RoleCustomer}
	seller   = model.Session{User: &model.User{Username: "sam"}, Role: model.RoleSeller}
)

type ControllerSuite struct {
	suite.Suite
	clock      *mocks.MockClock
	refresher  *fakeRefresher
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.refresher = &fakeRefresher{}
	s.controller = NewController("scope-1", s.clock, DefaultConfig(), s.refresher, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ControllerSuite) TestToggleOpensVariantForSession() {
	s.Equal(OpenGuest, s.controller.Toggle(s.ctx, model.GuestSession()).State)
	s.controller.Reset()
	s.Equal(OpenCustomer, s.controller.Toggle(s.ctx, customer).State)
	s.controller.Reset()
	s.Equal(OpenSeller, s.controller.Toggle(s.ctx, seller).State)
}

func (s *ControllerSuite) TestToggleTwiceAfterGuardCloses() {
	s.controller.Toggle(s.ctx, customer)
	s.clock.Advance(60 * time.Millisecond)

	result := s.controller.Toggle(s.ctx, customer)

	s.True(result.Applied)
	s.Equal(Closed, result.State)
}

func (s *ControllerSuite) TestDoubleToggleInsideGuardEqualsSingleToggle() {
	first := s.controller.Toggle(s.ctx, customer)
	s.clock.Advance(10 * time.Millisecond)
	second := s.controller.Toggle(s.ctx, customer)

	s.True(first.Applied)
	s.False(second.Applied)
	s.Equal(OpenCustomer, s.controller.State())
	s.Equal(1, s.refresher.badgeCalls)
}

func (s *ControllerSuite) TestCloseGuardIsLongerThanOpenGuard() {
	s.controller.Toggle(s.ctx, customer)
	s.clock.Advance(60 * time.Millisecond)
	s.controller.Toggle(s.ctx, customer)

	s.clock.Advance(300 * time.Millisecond)
	s.False(s.controller.Toggle(s.ctx, customer).Applied)

	s.clock.Advance(60 * time.Millisecond)
	s.Equal(OpenCustomer, s.controller.Toggle(s.ctx, customer).State)
}

func (s *ControllerSuite) TestVariantIsComputedAtToggleTime() {
	s.controller.Toggle(s.ctx, model.GuestSession())
	s.clock.Advance(time.Second)

	result := s.controller.Toggle(s.ctx, seller)

	s.Equal(OpenSeller, result.State)
	s.Equal(1, s.refresher.listingCalls)
}

func (s *ControllerSuite) TestOpenSideEffects() {
	s.controller.Toggle(s.ctx, model.GuestSession())
	s.Zero(s.refresher.badgeCalls)
	s.Zero(s.refresher.listingCalls)
}

func (s *ControllerSuite) TestRefreshFailureStillOpens() {
	s.refresher.err = errors.New("backend down")

	s.Equal(OpenCustomer, s.controller.Toggle(s.ctx, customer).State)
}

func (s *ControllerSuite) TestExternalCloseReasons() {
	for _, reason := range []Reason{ReasonOutside, ReasonEscape} {
		s.controller.Reset()
		s.controller.Toggle(s.ctx, customer)
		s.clock.Advance(time.Second)

		result := s.controller.Close(reason)
		s.True(result.Applied, reason)
		s.Equal(Closed, result.State)
	}
}

func (s *ControllerSuite) TestCloseInsideGuardIsIgnoredExceptNavigate() {
	s.controller.Toggle(s.ctx, customer)

	s.False(s.controller.Close(ReasonEscape).Applied)
	s.True(s.controller.Close(ReasonNavigate).Applied)
	s.Equal(Closed, s.controller.State())
}

func (s *ControllerSuite) TestCloseWhenClosedIsNoop() {
	s.False(s.controller.Close(ReasonEscape).Applied)
}

func (s *ControllerSuite) TestScrollClosesOnlyNarrowViewports() {
	s.controller.Toggle(s.ctx, customer)
	s.clock.Advance(time.Second)

	s.False(s.controller.Scrolled(1280, 500).Applied)
	s.False(s.controller.Scrolled(375, 50).Applied)
	s.True(s.controller.Scrolled(375, 500).Applied)
}

func (s *ControllerSuite) TestParseReason() {
	s.Equal(ReasonEscape, ParseReason("escape"))
	s.Equal(ReasonOutside, ParseReason("whatever"))
}

func TestRegistry(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	reg := NewRegistry(clk, DefaultConfig(), nil, testutil.NopLogger())
	ctx := context.Background()

	a := reg.For("a")
	if a != reg.For("a") {
		t.Fatal("registry must return the same controller for a scope")
	}
	a.Toggle(ctx, customer)
	reg.Reset("a")
	if a.State() != Closed {
		t.Fatalf("reset should close the menu, got %s", a.State())
	}

	reg.For("b")
	clk.Advance(2 * time.Hour)
	reg.For("c")
	if dropped := reg.Sweep(time.Hour); dropped != 2 {
		t.Fatalf("expected 2 idle controllers dropped, got %d", dropped)
	}
	if reg.Len() != 1 {
		t.Fatalf("expected 1 controller left, got %d", reg.Len())
	}
}
