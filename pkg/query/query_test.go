// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package query_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/librarium/pkg/query"
)

func TestOptionalInt(t *testing.T) {
	values := url.Values{"year": {"2024"}, "bad": {"twenty"}}

	year, err := query.OptionalInt(values, "year")
	require.NoError(t, err)
	assert.Equal(t, 2024, *year)

	missing, err := query.OptionalInt(values, "month")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = query.OptionalInt(values, "bad")
	assert.Error(t, err)
}

func TestText(t *testing.T) {
	assert.Equal(t, "Dune", query.Text(url.Values{"q": {"  Dune "}}, "q"))
	assert.Empty(t, query.Text(url.Values{}, "q"))
}
