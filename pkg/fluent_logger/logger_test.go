package fluentlogger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	valid := Config{Host: "fluent-bit", Port: 24224, TagPrefix: "listing-organizer"}
	assert.NoError(t, valid.validate())

	noPrefix := valid
	noPrefix.TagPrefix = ""
	assert.Error(t, noPrefix.validate())

	noHost := valid
	noHost.Host = ""
	assert.Error(t, noHost.validate())

	badPort := valid
	badPort.Port = 70000
	assert.Error(t, badPort.validate())
}

func TestNewClientAsyncDoesNotDial(t *testing.T) {
	client, err := NewClient(Config{Host: "127.0.0.1", Port: 1, TagPrefix: "test", Async: true})
	if assert.NoError(t, err) {
		assert.NoError(t, client.Close())
	}
}
