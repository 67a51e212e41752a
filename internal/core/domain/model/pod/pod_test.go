package pod_test

import (
	"testing"
	"time"

	"skycourier/internal/core/domain/model/kernel"
	"skycourier/internal/core/domain/model/pod"
	"skycourier/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "pod-secret"

func TestNewProof(t *testing.T) {
	orderID := kernel.NewUUID()

	t.Run("photo proof requires a photo url", func(t *testing.T) {
		p, err := pod.NewProof(kernel.NewUUID(), orderID, pod.MethodPhoto,
			pod.Attributes{PhotoURL: "https://cdn/pod.jpg"}, testSecret)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn/pod.jpg", p.PhotoURL())
		assert.Empty(t, p.OTPHash())

		_, err = pod.NewProof(kernel.NewUUID(), orderID, pod.MethodPhoto,
			pod.Attributes{}, testSecret)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("otp proof stores a hash, not the code", func(t *testing.T) {
		p, err := pod.NewProof(kernel.NewUUID(), orderID, pod.MethodOTP,
			pod.Attributes{OTPCode: "482913"}, testSecret)
		require.NoError(t, err)

		assert.NotEmpty(t, p.OTPHash())
		assert.NotContains(t, p.OTPHash(), "482913")
		assert.Equal(t, pod.HashOTP(testSecret, "482913"), p.OTPHash())

		_, err = pod.NewProof(kernel.NewUUID(), orderID, pod.MethodOTP,
			pod.Attributes{}, testSecret)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("operator confirm requires a confirmer", func(t *testing.T) {
		p, err := pod.NewProof(kernel.NewUUID(), orderID, pod.MethodOperatorConfirm,
			pod.Attributes{ConfirmedBy: "ops-7", Notes: "left at gate"}, testSecret)
		require.NoError(t, err)
		assert.Equal(t, "ops-7", p.ConfirmedBy())
		assert.Equal(t, "left at gate", p.Notes())

		_, err = pod.NewProof(kernel.NewUUID(), orderID, pod.MethodOperatorConfirm,
			pod.Attributes{}, testSecret)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("unknown method rejected", func(t *testing.T) {
		_, err := pod.NewProof(kernel.NewUUID(), orderID, pod.Method("SIGNATURE"),
			pod.Attributes{}, testSecret)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestProof_VerifyOTP(t *testing.T) {
	p, err := pod.NewProof(kernel.NewUUID(), kernel.NewUUID(), pod.MethodOTP,
		pod.Attributes{OTPCode: "482913"}, testSecret)
	require.NoError(t, err)

	assert.True(t, p.VerifyOTP(testSecret, "482913"))
	assert.False(t, p.VerifyOTP(testSecret, "000000"))
	assert.False(t, p.VerifyOTP("other-secret", "482913"))
}

func TestProof_Validate(t *testing.T) {
	var p pod.Proof
	require.ErrorIs(t, p.Validate(), pod.ErrProofIsNotConstructed)
}

func TestRestoreProof(t *testing.T) {
	created := time.Now().UTC().Add(-time.Minute)

	p, err := pod.RestoreProof(kernel.NewUUID(), kernel.NewUUID(), pod.MethodPhoto,
		"https://cdn/pod.jpg", "", "", "", created)
	require.NoError(t, err)
	assert.Equal(t, created, p.CreatedAt())

	_, err = pod.RestoreProof(kernel.NewUUID(), kernel.NewUUID(), pod.Method("X"),
		"", "", "", "", created)
	require.Error(t, err)
}

func TestMethodFromString(t *testing.T) {
	for _, name := range []string{"PHOTO", "OTP", "OPERATOR_CONFIRM"} {
		m, err := pod.MethodFromString(name)
		require.NoError(t, err)
		assert.Equal(t, name, string(m))
	}

	_, err := pod.MethodFromString("photo")
	require.Error(t, err)
}
