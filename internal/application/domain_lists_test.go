package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainLists(t *testing.T) {
	lists := NewDomainLists()

	assert.Equal(t, 2, lists.Add(Blacklist, "a.com", "b.com", "a.com"))
	assert.Equal(t, 0, lists.Add(Blacklist, "a.com"), "Re-adding is a no-op")

	assert.True(t, lists.Move(Whitelist, "a.com"))
	assert.False(t, lists.Contains(Blacklist, "a.com"))
	assert.True(t, lists.Contains(Whitelist, "a.com"))
	assert.False(t, lists.Move(Whitelist, "a.com"), "Already only on the whitelist")

	assert.True(t, lists.Remove(Blacklist, "b.com"))
	assert.False(t, lists.Remove(Blacklist, "b.com"))

	phishing, legitimate := lists.Merge([]string{"c.com", "d.com"}, []string{"a.com", "e.com"})
	assert.Equal(t, 2, phishing)
	assert.Equal(t, 1, legitimate)

	black, white := lists.Snapshot()
	assert.Equal(t, []string{"c.com", "d.com"}, black)
	assert.Equal(t, []string{"a.com", "e.com"}, white)
}
