package database

import (
	"strings"
	"sync"
	"testing"

	"gorm.io/gorm/schema"
)

func TestCascadeRelationsDeleteWithOwner(t *testing.T) {
	if len(cascades) == 0 {
		t.Fatal("no cascading relations configured")
	}
	cache := &sync.Map{}
	for _, c := range cascades {
		s, err := schema.Parse(c.model, cache, schema.NamingStrategy{})
		if err != nil {
			t.Fatalf("parse %T: %v", c.model, err)
		}
		rel, ok := s.Relationships.Relations[c.relation]
		if !ok {
			t.Fatalf("%s has no relation %s", s.Name, c.relation)
		}
		constraint := rel.ParseConstraint()
		if constraint == nil {
			t.Fatalf("%s.%s has no foreign key constraint", s.Name, c.relation)
		}
		if !strings.EqualFold(constraint.OnDelete, "CASCADE") {
			t.Fatalf("%s.%s on delete = %q, want CASCADE", s.Name, c.relation, constraint.OnDelete)
		}
	}
}
