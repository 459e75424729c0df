package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskDSN(t *testing.T) {
	cases := map[string]string{
		"": "",
		"postgres://hub:s3cret@db:5432/fleet?sslmode=disable": "postgres://hub:***@db:5432/fleet?sslmode=disable",
		"postgres://hub@db/fleet":                             "postgres://hub@db/fleet",
		"host=db user=hub password=s3cret dbname=fleet":       "host=db user=hub password=*** dbname=fleet",
		"file:fleethub.db?_busy_timeout=5000":                 "file:fleethub.db?_busy_timeout=5000",
	}
	for in, want := range cases {
		assert.Equal(t, want, MaskDSN(in), in)
	}
}
