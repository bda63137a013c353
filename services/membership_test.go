package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMembershipChange(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	aCopy := a

	tests := []struct {
		name     string
		oldID    *primitive.ObjectID
		newID    *primitive.ObjectID
		wantPull bool
		wantPush bool
	}{
		{"detached stays detached", nil, nil, false, false},
		{"attach to a project", nil, &a, false, true},
		{"detach from a project", &a, nil, true, false},
		{"move between projects", &a, &b, true, true},
		{"reassign to same project is a no-op", &a, &aCopy, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pull, push := membershipChange(tt.oldID, tt.newID)
			assert.Equal(t, tt.wantPull, pull, "pull")
			assert.Equal(t, tt.wantPush, push, "push")
		})
	}
}

func TestAttachWrites(t *testing.T) {
	target := primitive.NewObjectID()
	other := primitive.NewObjectID()
	sameAsTarget := target

	tests := []struct {
		name        string
		current     *primitive.ObjectID
		wantPull    bool
		wantSetTask bool
	}{
		{"detached task gets back-reference", nil, false, true},
		{"already attached needs no task write", &sameAsTarget, false, false},
		{"attached elsewhere is pulled and repointed", &other, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pull, setTask := attachWrites(tt.current, target)
			assert.Equal(t, tt.wantPull, pull, "pull")
			assert.Equal(t, tt.wantSetTask, setTask, "setTask")
		})
	}
}
