// Copyright 2026 Peter Edge
//
// All rights reserved.

package bsdatecache

import (
	"testing"

	"github.com/bufdev/bsdate/internal/pkg/bsclient"
	"github.com/bufdev/bsdate/internal/pkg/bsconv"
	"github.com/stretchr/testify/require"
)

func TestCache(t *testing.T) {
	t.Parallel()
	cache, err := OpenInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, cache.Close()) })

	adToBSKey := bsclient.CacheKey(bsconv.DirectionADToBS, 2024, 10, 15)
	bsToADKey := bsclient.CacheKey(bsconv.DirectionBSToAD, 2081, 6, 29)

	_, ok, err := cache.Get(adToBSKey)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.Set(adToBSKey, bsconv.NewBSDate(2081, 6, 29)))
	require.NoError(t, cache.Set(bsToADKey, bsconv.NewADDate(2024, 10, 15)))
	// The output calendar must match the key's direction.
	require.Error(t, cache.Set(adToBSKey, bsconv.NewADDate(2024, 10, 15)))
	require.Error(t, cache.Set("sideways-1-2-3", bsconv.NewADDate(2024, 10, 15)))

	output, ok, err := cache.Get(adToBSKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, bsconv.NewBSDate(2081, 6, 29), output)
	output, ok, err = cache.Get(bsToADKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, bsconv.NewADDate(2024, 10, 15), output)

	length, err := cache.Len()
	require.NoError(t, err)
	require.Equal(t, 2, length)
	require.NoError(t, cache.Clear())
	length, err = cache.Len()
	require.NoError(t, err)
	require.Equal(t, 0, length)
}

func TestCachePersists(t *testing.T) {
	t.Parallel()
	dirPath := t.TempDir()
	key := bsclient.CacheKey(bsconv.DirectionADToBS, 2024, 10, 15)
	cache, err := Open(nil, dirPath)
	require.NoError(t, err)
	require.NoError(t, cache.Set(key, bsconv.NewBSDate(2081, 6, 29)))
	require.NoError(t, cache.Close())

	cache, err = Open(nil, dirPath)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, cache.Close()) })
	output, ok, err := cache.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, bsconv.NewBSDate(2081, 6, 29), output)
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()
	_, err := Open(nil, "")
	require.Error(t, err)
}
