package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLifecycleHooks_Merge(t *testing.T) {
	var calls []string
	a := LifecycleHooks{
		OnEvent: func(ctx context.Context, e *ObservedEvent) { calls = append(calls, "a:"+string(e.Kind)) },
	}
	b := LifecycleHooks{
		OnEvent:  func(ctx context.Context, e *ObservedEvent) { calls = append(calls, "b:"+string(e.Kind)) },
		OnReject: func(ctx context.Context, reason string) { calls = append(calls, "b:"+reason) },
	}

	merged := a.Merge(b)
	merged.OnEvent(context.Background(), &ObservedEvent{Kind: KindPinAdded})
	merged.OnReject(context.Background(), "token")

	assert.Equal(t, []string{"a:pin_added", "b:pin_added", "b:token"}, calls)
	assert.Nil(t, merged.OnSend, "unset hooks stay nil")
}
