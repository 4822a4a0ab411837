package ident

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittclouds/rolodex/internal/errs"
)

func TestValid(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"Mom", true},
		{"my_friend", true},
		{"_private", true},
		{"Work2024", true},
		{"SELECT", false},
		{"select", false},
		{"Union", false},
		{"2cool", false},
		{"", false},
		{"has space", false},
		{"semi;colon", false},
		{"x'); DROP TABLE tables; --", false},
		{"dash-name", false},
		{"café", true},
		{"Familia_Añez", true},
		{"Друзья", true},
		{"友達", true},
		{"_2", true},
		{"٣cool", false},
		{"naïve-name", false},
		{"tab\tname", false},
		{"selects", true},
		{"tablets", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Valid(tc.name))
		})
	}
}

func TestEveryKeywordRejected(t *testing.T) {
	require.NotEmpty(t, reserved)
	for kw := range reserved {
		assert.False(t, Valid(kw), kw)
		assert.True(t, IsReserved(kw), kw)
	}
	assert.Len(t, reserved, 57)
}

func TestCheck(t *testing.T) {
	require.NoError(t, Check("Friends"))

	err := Check("DROP")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalidIdentifier))
	assert.Contains(t, err.Error(), `"DROP"`)
}

func TestCheckTable(t *testing.T) {
	require.NoError(t, CheckTable("Friends"))
	require.NoError(t, CheckTable("Amigos_Añez"))

	for _, name := range []string{"tables", "TABLES", "sqlite_master", "SQLite_sequence", "DROP", "1bad"} {
		err := CheckTable(name)
		assert.True(t, errors.Is(err, errs.ErrInvalidIdentifier), name)
	}

	// Grammar and keywords alone do not cover system names.
	assert.True(t, Valid("tables"))
	assert.True(t, IsSystem("sqlite_stat1"))
	assert.False(t, IsSystem("tablets"))
}

func TestFilter(t *testing.T) {
	valid, rejected := Filter([]string{"Family", "1bad", "Work", "order", "tables", "Друзья"})
	assert.Equal(t, []string{"Family", "Work", "Друзья"}, valid)
	assert.Equal(t, []string{"1bad", "order", "tables"}, rejected)
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"Family"`, Quote("Family"))
}
