package service

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatsTxOptionsFollowDriver(t *testing.T) {
	cases := []struct {
		driver, isolation string
		want              *sql.TxOptions
	}{
		{"postgres", "", &sql.TxOptions{Isolation: sql.LevelRepeatableRead}},
		{"mysql", "auto", &sql.TxOptions{Isolation: sql.LevelRepeatableRead}},
		{"postgres", "serializable", &sql.TxOptions{Isolation: sql.LevelSerializable}},
		{"postgres", "default", nil},
		{"sqlite", "auto", nil},
	}
	for _, tc := range cases {
		s := NewStatsService(nil, nil, StatsOptions{Driver: tc.driver, Isolation: tc.isolation}, nil)
		assert.Equal(t, tc.want, s.txOptions(), "%s/%s", tc.driver, tc.isolation)
	}
}
