package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequest_Defaults(t *testing.T) {
	p := PageRequest{}
	assert.Equal(t, 0, p.Offset())
	assert.Equal(t, DefaultMaxResults, p.Limit())
}

func TestPageRequest_Clamp(t *testing.T) {
	p := PageRequest{MaxResults: MaxMaxResults + 1}
	assert.Equal(t, MaxMaxResults, p.Limit())

	p = PageRequest{MaxResults: -5}
	assert.Equal(t, DefaultMaxResults, p.Limit())
}

func TestPageToken_RoundTrip(t *testing.T) {
	token := EncodePageToken(250)
	assert.NotEmpty(t, token)

	p := PageRequest{PageToken: token}
	assert.Equal(t, 250, p.Offset())
}

func TestPageToken_Invalid(t *testing.T) {
	p := PageRequest{PageToken: "not base64!!"}
	assert.Equal(t, 0, p.Offset())
}

func TestNextPageToken(t *testing.T) {
	// 30 items, pages of 10: second page starts at 10, last page yields no token.
	assert.Equal(t, EncodePageToken(10), NextPageToken(0, 10, 30))
	assert.Equal(t, "", NextPageToken(20, 10, 30))
}
