package mqtt

import (
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
)

type fakeToken struct {
	paho.Token
	done bool
	err  error
}

func (t *fakeToken) WaitTimeout(time.Duration) bool { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type fakePaho struct {
	paho.Client
	tok          *fakeToken
	disconnected bool
}

func (f *fakePaho) Connect() paho.Token     { return f.tok }
func (f *fakePaho) Disconnect(quiesce uint) { f.disconnected = true }

func TestConnectTimeoutDisconnects(t *testing.T) {
	f := &fakePaho{tok: &fakeToken{done: false}}

	err := connect(f, 10*time.Millisecond)

	assert.Error(t, err)
	assert.True(t, f.disconnected)
}

func TestConnectError(t *testing.T) {
	f := &fakePaho{tok: &fakeToken{done: true, err: errors.New("not authorized")}}

	err := connect(f, time.Second)

	assert.ErrorContains(t, err, "not authorized")
	assert.False(t, f.disconnected)
}

func TestConnectOK(t *testing.T) {
	f := &fakePaho{tok: &fakeToken{done: true}}

	assert.NoError(t, connect(f, time.Second))
}
