package application

import (
	"context"
	"sync"

	"raffler/domain/entities"
	"raffler/domain/events"
	"raffler/domain/interfaces"
	"raffler/domain/testhelpers"
)

// fakeUnitOfWork hands out mock repositories and keeps published events
// pending until Commit, like the real transactional publisher
type fakeUnitOfWork struct {
	raffleRepo *testhelpers.MockRaffleRepository
	ticketRepo *testhelpers.MockTicketRepository
	winnerRepo *testhelpers.MockWinnerRepository

	beginErr  error
	commitErr error

	begun      bool
	committed  bool
	rolledBack bool
	pending    []events.Event
	published  []events.Event
}

func newFakeUnitOfWork() *fakeUnitOfWork {
	return &fakeUnitOfWork{
		raffleRepo: new(testhelpers.MockRaffleRepository),
		ticketRepo: new(testhelpers.MockTicketRepository),
		winnerRepo: new(testhelpers.MockWinnerRepository),
	}
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error {
	if u.beginErr != nil {
		return u.beginErr
	}
	u.begun = true
	return nil
}

func (u *fakeUnitOfWork) Commit() error {
	if u.commitErr != nil {
		u.pending = nil
		return u.commitErr
	}
	u.committed = true
	u.published = append(u.published, u.pending...)
	u.pending = nil
	return nil
}

func (u *fakeUnitOfWork) Rollback() error {
	if !u.committed {
		u.rolledBack = true
	}
	u.pending = nil
	return nil
}

func (u *fakeUnitOfWork) RaffleRepository() interfaces.RaffleRepository { return u.raffleRepo }
func (u *fakeUnitOfWork) TicketRepository() interfaces.TicketRepository { return u.ticketRepo }
func (u *fakeUnitOfWork) WinnerRepository() interfaces.WinnerRepository { return u.winnerRepo }
func (u *fakeUnitOfWork) EventBus() interfaces.EventPublisher           { return u }

func (u *fakeUnitOfWork) Publish(event events.Event) error {
	u.pending = append(u.pending, event)
	return nil
}

type fakeUnitOfWorkFactory struct {
	uow     *fakeUnitOfWork
	created int
}

func (f *fakeUnitOfWorkFactory) Create() UnitOfWork {
	f.created++
	return f.uow
}

type recordingMetrics struct {
	mu         sync.Mutex
	created    int
	claimed    int
	draws      []int
	verified   []bool
	rejections map[string][]entities.ErrorCode
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{rejections: make(map[string][]entities.ErrorCode)}
}

func (m *recordingMetrics) RecordRaffleCreated(int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created++
}

func (m *recordingMetrics) RecordTicketClaimed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claimed++
}

func (m *recordingMetrics) RecordDraw(winnerCount int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draws = append(m.draws, winnerCount)
}

func (m *recordingMetrics) RecordVerification(hasWon bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verified = append(m.verified, hasWon)
}

func (m *recordingMetrics) RecordRejection(operation string, code entities.ErrorCode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejections[operation] = append(m.rejections[operation], code)
}

func (m *recordingMetrics) MeasureOperation(string) func() { return func() {} }

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) InvalidateRaffleList() { c.calls++ }

const (
	managerIP = "10.0.0.1"
	visitorIP = "192.168.1.50"
)

type controllerFixture struct {
	uow         *fakeUnitOfWork
	factory     *fakeUnitOfWorkFactory
	vault       *testhelpers.MockSecretVault
	rng         *testhelpers.ScriptedRandom
	metrics     *recordingMetrics
	invalidator *countingInvalidator
	controller  *RaffleController
}

func newControllerFixture(rngValues ...int64) *controllerFixture {
	f := &controllerFixture{
		uow:         newFakeUnitOfWork(),
		vault:       new(testhelpers.MockSecretVault),
		rng:         testhelpers.NewScriptedRandom(rngValues...),
		metrics:     newRecordingMetrics(),
		invalidator: &countingInvalidator{},
	}
	f.factory = &fakeUnitOfWorkFactory{uow: f.uow}
	f.controller = NewRaffleController(
		f.factory,
		f.vault,
		f.rng,
		NewIPAllowList([]string{managerIP}),
		f.invalidator,
		f.metrics,
	)
	return f
}
