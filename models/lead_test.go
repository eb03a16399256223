package models

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestDedupeTags(t *testing.T) {
	assert.Equal(t, []string{"VIP", "Ghosted"}, DedupeTags([]string{"VIP", "Ghosted", "VIP"}))
	assert.Equal(t, []string{"A"}, DedupeTags([]string{"A", "A", "A"}))
	assert.Empty(t, DedupeTags(nil))

	// First occurrence order is preserved
	assert.Equal(t, []string{"B", "A", "C"}, DedupeTags([]string{"B", "A", "B", "C", "A"}))
}

func TestAddedTags(t *testing.T) {
	// Editing ["VIP"] to ["VIP","Ghosted"] adds exactly Ghosted
	assert.Equal(t, []string{"Ghosted"}, AddedTags([]string{"VIP"}, []string{"VIP", "Ghosted"}))

	// A tag already present before the write is never reported as added
	assert.Empty(t, AddedTags([]string{"VIP", "Ghosted"}, []string{"Ghosted", "VIP"}))

	// A tag repeated in the new set is reported once
	assert.Equal(t, []string{"Ghosted"}, AddedTags([]string{"VIP"}, []string{"VIP", "Ghosted", "Ghosted"}))

	// Creation: everything is newly added
	assert.Equal(t, []string{"VIP", "Ghosted"}, AddedTags(nil, []string{"VIP", "Ghosted"}))

	// Removals produce no additions
	assert.Empty(t, AddedTags([]string{"VIP", "Ghosted"}, []string{"VIP"}))
	assert.Empty(t, AddedTags(nil, nil))
}

func TestAddedTagsIsIdempotentOverRepeatedDiffs(t *testing.T) {
	oldTags := []string{"VIP"}
	newTags := []string{"VIP", "Ghosted"}

	first := AddedTags(oldTags, newTags)
	second := AddedTags(newTags, newTags)

	assert.Equal(t, []string{"Ghosted"}, first)
	assert.Empty(t, second)
}

func TestLeadHasTag(t *testing.T) {
	lead := Lead{Tags: pq.StringArray{"VIP", InitialMessageTag}}

	assert.True(t, lead.HasTag("VIP"))
	assert.True(t, lead.HasTag(InitialMessageTag))
	assert.False(t, lead.HasTag("Ghosted"))
}

func TestLeadFullName(t *testing.T) {
	lead := Lead{FirstName: "Jordan", LastName: "Reyes"}
	assert.Equal(t, "Jordan Reyes", lead.FullName())
}
