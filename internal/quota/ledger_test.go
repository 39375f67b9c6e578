package quota_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"docvault-web-server/internal/quota"
)

func TestCheckAndReserve(t *testing.T) {
	tests := []struct {
		name          string
		currentTotal  int64
		deltaBytes    int64
		quotaMax      int64
		wantAccepted  bool
		wantNewTotal  int64
		wantAvailable int64
	}{
		{
			name:          "exact fit to boundary",
			currentTotal:  quota.MaxUserBytes - 1024,
			deltaBytes:    1024,
			quotaMax:      quota.MaxUserBytes,
			wantAccepted:  true,
			wantNewTotal:  quota.MaxUserBytes,
			wantAvailable: 1024,
		},
		{
			name:          "one byte over",
			currentTotal:  quota.MaxUserBytes - 1024,
			deltaBytes:    1025,
			quotaMax:      quota.MaxUserBytes,
			wantAccepted:  false,
			wantNewTotal:  quota.MaxUserBytes - 1024,
			wantAvailable: 1024,
		},
		{
			name:          "upload into empty account",
			currentTotal:  0,
			deltaBytes:    2097152,
			quotaMax:      quota.MaxUserBytes,
			wantAccepted:  true,
			wantNewTotal:  2097152,
			wantAvailable: quota.MaxUserBytes,
		},
		{
			name:          "rejected upload at 49MB used",
			currentTotal:  49_000_000,
			deltaBytes:    4 << 20,
			quotaMax:      quota.MaxUserBytes,
			wantAccepted:  false,
			wantNewTotal:  49_000_000,
			wantAvailable: 3_428_800,
		},
		{
			name:          "negative delta shrinks without quota check",
			currentTotal:  quota.MaxUserBytes,
			deltaBytes:    -1048576,
			quotaMax:      quota.MaxUserBytes,
			wantAccepted:  true,
			wantNewTotal:  quota.MaxUserBytes - 1048576,
			wantAvailable: 0,
		},
		{
			name:          "negative delta never goes below zero",
			currentTotal:  512,
			deltaBytes:    -1024,
			quotaMax:      quota.MaxUserBytes,
			wantAccepted:  true,
			wantNewTotal:  0,
			wantAvailable: quota.MaxUserBytes - 512,
		},
		{
			name:          "drifted total above quota still reports zero available",
			currentTotal:  quota.MaxUserBytes + 4096,
			deltaBytes:    1,
			quotaMax:      quota.MaxUserBytes,
			wantAccepted:  false,
			wantNewTotal:  quota.MaxUserBytes + 4096,
			wantAvailable: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := quota.CheckAndReserve(tt.currentTotal, tt.deltaBytes, tt.quotaMax)

			assert.Equal(t, tt.wantAccepted, decision.Accepted)
			assert.Equal(t, tt.wantNewTotal, decision.NewTotal)
			assert.Equal(t, tt.wantAvailable, decision.AvailableBytes)
		})
	}
}

func TestApplyDelete(t *testing.T) {
	assert.Equal(t, int64(1024), quota.ApplyDelete(2048, 1024))
	assert.Equal(t, int64(0), quota.ApplyDelete(1024, 1024))
	// разъехавшийся учёт не уводит счётчик в минус
	assert.Equal(t, int64(0), quota.ApplyDelete(512, 1024))
}

func TestToMB(t *testing.T) {
	assert.Equal(t, 2.0, quota.ToMB(2097152))
	assert.Equal(t, 50.0, quota.ToMB(quota.MaxUserBytes))
	assert.Equal(t, 3.27, quota.ToMB(3428800))
	assert.Equal(t, 0.0, quota.ToMB(0))
}
