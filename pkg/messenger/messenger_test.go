package messenger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/messenger"
	"github.com/aretw0/onboard/pkg/tutorial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	posts   []domain.OutboundMessage
	updates []domain.OutboundMessage
	err     error
}

func (f *fakeClient) PostMessage(ctx context.Context, msg domain.OutboundMessage) (string, error) {
	f.posts = append(f.posts, msg)
	return "1700000000.000100", f.err
}

func (f *fakeClient) UpdateMessage(ctx context.Context, msg domain.OutboundMessage) error {
	f.updates = append(f.updates, msg)
	return f.err
}

func newUser() *domain.UserState {
	tmpl := &domain.Template{Steps: []domain.Step{
		{Text: ":white_large_square: react", Color: "#f2c744"},
		{Text: ":white_large_square: pin", Color: "#f2c744"},
		{Text: ":white_large_square: share", Color: "#f2c744"},
	}}
	return domain.NewUserState("U1", tmpl)
}

func TestSend_CreateDefaultsToDirectMessage(t *testing.T) {
	client := &fakeClient{}
	m := messenger.New()
	user := newUser()

	ts, err := m.Send(context.Background(), domain.TeamState{ID: "T1", Client: client}, user, messenger.Target{})
	require.NoError(t, err)
	assert.Equal(t, "1700000000.000100", ts)

	require.Len(t, client.posts, 1)
	assert.Empty(t, client.updates)
	msg := client.posts[0]
	assert.Equal(t, "U1", msg.Channel)
	assert.True(t, msg.AsUser)
	assert.Empty(t, msg.TS)
	assert.Equal(t, tutorial.WelcomeText, msg.Text)
	assert.Equal(t, user.Tutorial.Attachments(), msg.Attachments)
}

func TestSend_Update(t *testing.T) {
	client := &fakeClient{}
	var sends []*domain.SendEvent
	m := messenger.New(messenger.WithLifecycleHooks(domain.LifecycleHooks{
		OnSend: func(ctx context.Context, e *domain.SendEvent) { sends = append(sends, e) },
	}))
	user := newUser()
	user.Tutorial.Complete(domain.StepPin)

	ts, err := m.Send(context.Background(), domain.TeamState{ID: "T1", Client: client}, user,
		messenger.Target{Channel: "C1", TS: "111.222"})
	require.NoError(t, err)
	assert.Equal(t, "111.222", ts)

	require.Len(t, client.updates, 1)
	msg := client.updates[0]
	assert.Equal(t, "C1", msg.Channel)
	assert.Equal(t, "111.222", msg.TS)
	assert.Equal(t, domain.CompletedColor, msg.Attachments[1].Color)

	require.Len(t, sends, 1)
	assert.True(t, sends[0].Update)
	assert.NoError(t, sends[0].Err)
}

func TestSend_NotInstalled(t *testing.T) {
	m := messenger.New()
	_, err := m.Send(context.Background(), domain.TeamState{ID: "T1"}, newUser(), messenger.Target{})
	assert.ErrorIs(t, err, domain.ErrTeamNotInstalled)
}

func TestSend_ClientError(t *testing.T) {
	apiErr := errors.New("channel_not_found")
	client := &fakeClient{err: apiErr}
	m := messenger.New()

	_, err := m.Send(context.Background(), domain.TeamState{ID: "T1", Client: client}, newUser(),
		messenger.Target{Channel: "C1", TS: "1.2"})
	assert.ErrorIs(t, err, apiErr)
}
