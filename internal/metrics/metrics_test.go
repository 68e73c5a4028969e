// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestObserveRecordsOperationAndFailure(t *testing.T) {
	r := NewRegistry()
	r.Observe("decode", 5*time.Millisecond, nil)
	r.Observe("decode", 5*time.Millisecond, errors.New("boom"))

	metricFamilies, err := r.Gatherer().Gather()
	require.NoError(t, err)
	require.NotEmpty(t, metricFamilies)
}

func TestTrackReportsErrorCapturedAtDeferTime(t *testing.T) {
	r := NewRegistry()

	run := func() (err error) {
		defer Track(r, "validate", time.Now(), &err)()
		err = errors.New("bad profile")
		return err
	}
	require.Error(t, run())
}
