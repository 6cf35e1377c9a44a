package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"focushub/internal/member/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type captureSubscriber struct {
	channel string
	handler func([]byte)
	err     error
}

func (c *captureSubscriber) Subscribe(_ context.Context, channel string, handler func([]byte)) error {
	c.channel = channel
	c.handler = handler
	return c.err
}

func TestPresenceSubscriber(t *testing.T) {
	repo := new(MockMemberRepo)
	repo.On("UpdateMemberStatus", mock.Anything, withStatus("AAA", domain.MemberStatusOnLine)).Return(nil).Once()
	repo.On("UpdateMemberStatus", mock.Anything, withStatus("ghost", domain.MemberStatusOffLine)).Return(errNoMember).Once()

	sub := &captureSubscriber{}
	ps := NewPresenceSubscriber(NewMemberUseCase(repo, new(MockSessionRepo), time.Hour, nil), sub, "presence:transitions")
	require.NoError(t, ps.Start(context.Background()))
	assert.Equal(t, "presence:transitions", sub.channel)

	sub.handler([]byte(`{"userId":"AAA","status":"online","at":"2026-01-02T03:04:05Z"}`))
	sub.handler([]byte(`{"userId":"ghost","status":"offline"}`))
	sub.handler([]byte(`not json`))
	sub.handler([]byte(`{"userId":"AAA","status":"busy"}`))

	repo.AssertExpectations(t)
	repo.AssertNumberOfCalls(t, "UpdateMemberStatus", 2)
}

func TestPresenceSubscriberStartFails(t *testing.T) {
	sub := &captureSubscriber{err: errors.New("redis down")}
	ps := NewPresenceSubscriber(NewMemberUseCase(new(MockMemberRepo), new(MockSessionRepo), time.Hour, nil), sub, "presence:transitions")
	assert.Error(t, ps.Start(context.Background()))
}
