// Copyright 2026 The xhrxray Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package xhrxray

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeginTrace(t *testing.T) {
	trace := beginTrace("app", "PUT", "https://api.example.com/things/123")

	assert.Equal(t, "app", trace.Name)
	assert.True(t, strings.HasPrefix(trace.TraceID, "1-"))
	assert.Len(t, trace.ID, 16)
	assert.Greater(t, trace.StartTime, 0.0)
	assert.Nil(t, trace.EndTime)
	require.Len(t, trace.Subsegments, 1)
	sub := trace.Subsegments[0]
	assert.Len(t, sub.ID, 16)
	assert.NotEqual(t, trace.ID, sub.ID)
	assert.Equal(t, "api.example.com", sub.Name)
	assert.Equal(t, trace.StartTime, sub.StartTime)
	assert.Equal(t, "remote", sub.Namespace)
	assert.Equal(t, "PUT", sub.HTTP.Request.Method)
	assert.True(t, sub.HTTP.Request.Traced)
	assert.Nil(t, sub.EndTime)
	assert.Nil(t, sub.HTTP.Response)
}

func TestCloseOK(t *testing.T) {
	t.Run("end times", func(t *testing.T) {
		trace := beginTrace("app", "GET", "https://foo.com")

		closeOK(trace, 200, "10")

		require.NotNil(t, trace.EndTime)
		assert.GreaterOrEqual(t, *trace.EndTime, trace.StartTime)
		sub := trace.Subsegments[0]
		require.NotNil(t, sub.EndTime)
		assert.GreaterOrEqual(t, *sub.EndTime, sub.StartTime)
		assert.Equal(t, *trace.EndTime, *sub.EndTime)
	})
	t.Run("content length", func(t *testing.T) {
		cases := []struct {
			name   string
			header string
			want   *int64
		}{
			{"parseable", "42", i64ptr(42)},
			{"zero", "0", i64ptr(0)},
			{"absent", "", nil},
			{"non-numeric", "forty-two", nil},
			{"negative", "-1", nil},
		}
		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				trace := beginTrace("app", "GET", "https://foo.com")

				closeOK(trace, 200, c.header)

				resp := trace.Subsegments[0].HTTP.Response
				require.NotNil(t, resp)
				assert.Equal(t, 200, resp.Status)
				if c.want == nil {
					assert.Nil(t, resp.ContentLength)
				} else {
					require.NotNil(t, resp.ContentLength)
					assert.Equal(t, *c.want, *resp.ContentLength)
				}
			})
		}
	})
}

func TestCloseFailed(t *testing.T) {
	trace := beginTrace("app", "GET", "https://foo.com")

	closeFailed(trace, categoryTimeout, "")

	require.NotNil(t, trace.EndTime)
	sub := trace.Subsegments[0]
	require.NotNil(t, sub.EndTime)
	assert.True(t, sub.Error)
	require.NotNil(t, sub.Cause)
	require.Len(t, sub.Cause.Exceptions, 1)
	assert.Equal(t, categoryTimeout, sub.Cause.Exceptions[0].Type)
	assert.Empty(t, sub.Cause.Exceptions[0].Message)
	assert.Nil(t, sub.HTTP.Response)
}

func TestDestinationHost(t *testing.T) {
	assert.Equal(t, "foo.com", destinationHost("https://foo.com/bar?baz=1"))
	assert.Equal(t, "foo.com:8443", destinationHost("https://foo.com:8443/bar"))
	assert.Equal(t, "/relative/path", destinationHost("/relative/path"))
	assert.Equal(t, "http://%zz", destinationHost("http://%zz"))
}

func i64ptr(n int64) *int64 {
	return &n
}
