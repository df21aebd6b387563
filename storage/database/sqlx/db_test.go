package sqlxrepos

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viserknight/mtss/core"
)

func Test_orderByClause(t *testing.T) {
	tests := []struct {
		name     string
		ordering []core.DBOrdering
		want     string
	}{
		{name: "no ordering", ordering: nil, want: ""},
		{name: "known field", ordering: []core.DBOrdering{{Field: "email", Ascending: true}}, want: "email ASC"},
		{name: "descending", ordering: []core.DBOrdering{{Field: "created_at"}}, want: "created_at DESC"},
		{name: "unknown field dropped", ordering: []core.DBOrdering{{Field: "nope", Ascending: true}}, want: ""},
		{
			name: "subquery dropped",
			ordering: []core.DBOrdering{
				{Field: "(SELECT token FROM invitation LIMIT 1)", Ascending: true},
				{Field: "email", Ascending: true},
			},
			want: "email ASC",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, orderByClause(tt.ordering, invitationColumns))
		})
	}
}
