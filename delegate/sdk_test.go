package delegate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/checkout-go/checkout"
	checkouterrors "github.com/utafrali/checkout-go/pkg/errors"
	"github.com/utafrali/checkout-go/pkg/logger"
)

func TestSDKDelegate_LaunchAndResult(t *testing.T) {
	var launched map[string]string
	d := NewSDKDelegate(SDKLauncherFunc(func(_ context.Context, sdkData map[string]string) error {
		launched = sdkData
		return nil
	}), logger.Nop())
	defer d.Teardown()
	d.Initialize(context.Background())

	require.NoError(t, d.HandleAction(context.Background(), &checkout.Action{
		Type:        checkout.ActionTypeSDK,
		PaymentData: "pd-sdk",
		SDKData:     map[string]string{"appid": "wx123", "noncestr": "n1"},
	}))
	assert.Equal(t, "wx123", launched["appid"])

	require.NoError(t, d.HandleSDKResult(context.Background(), map[string]any{
		checkout.DetailKeyResultCode: "0",
	}))

	details := recvDetails(t, d.Details())
	assert.Equal(t, "pd-sdk", details.PaymentData)
	assert.Equal(t, "0", details.Details[checkout.DetailKeyResultCode])
}

func TestSDKDelegate_RejectsEmptySDKData(t *testing.T) {
	d := NewSDKDelegate(SDKLauncherFunc(func(context.Context, map[string]string) error {
		t.Fatal("launcher must not be called")
		return nil
	}), logger.Nop())
	defer d.Teardown()
	d.Initialize(context.Background())

	err := d.HandleAction(context.Background(), &checkout.Action{Type: checkout.ActionTypeSDK})
	assert.ErrorIs(t, err, checkouterrors.ErrSerialization)
}

func TestSDKDelegate_WrapsLauncherFailure(t *testing.T) {
	launchErr := errors.New("wechat not installed")
	d := NewSDKDelegate(SDKLauncherFunc(func(context.Context, map[string]string) error {
		return launchErr
	}), logger.Nop())
	defer d.Teardown()
	d.Initialize(context.Background())

	err := d.HandleAction(context.Background(), &checkout.Action{
		Type:    checkout.ActionTypeSDK,
		SDKData: map[string]string{"appid": "wx123"},
	})
	assert.ErrorIs(t, err, launchErr)
}

func TestThreeDS2Delegate_EmitsAuthenticationResult(t *testing.T) {
	d := NewThreeDS2Delegate(ThreeDS2HandlerFunc(func(_ context.Context, subtype, token string) (string, error) {
		assert.Equal(t, "challenge", subtype)
		assert.Equal(t, "tok-1", token)
		return "tx-result", nil
	}), logger.Nop())
	defer d.Teardown()
	d.Initialize(context.Background())

	require.NoError(t, d.HandleAction(context.Background(), &checkout.Action{
		Type:        checkout.ActionTypeThreeDS2,
		Subtype:     "challenge",
		Token:       "tok-1",
		PaymentData: "pd-3ds",
	}))

	details := recvDetails(t, d.Details())
	assert.Equal(t, "pd-3ds", details.PaymentData)
	assert.Equal(t, "tx-result", details.Details[checkout.DetailKeyThreeDSResult])
}

func TestThreeDS2Delegate_EmitsAuthenticationFailure(t *testing.T) {
	authErr := errors.New("challenge abandoned")
	d := NewThreeDS2Delegate(ThreeDS2HandlerFunc(func(context.Context, string, string) (string, error) {
		return "", authErr
	}), logger.Nop())
	defer d.Teardown()
	d.Initialize(context.Background())

	require.NoError(t, d.HandleAction(context.Background(), &checkout.Action{
		Type:  checkout.ActionTypeThreeDS2,
		Token: "tok-1",
	}))

	assert.ErrorIs(t, recvError(t, d.Errors()), authErr)
}

func TestThreeDS2Delegate_RejectsMissingToken(t *testing.T) {
	d := NewThreeDS2Delegate(ThreeDS2HandlerFunc(func(context.Context, string, string) (string, error) {
		return "", nil
	}), logger.Nop())
	defer d.Teardown()
	d.Initialize(context.Background())

	err := d.HandleAction(context.Background(), &checkout.Action{Type: checkout.ActionTypeThreeDS2})
	assert.ErrorIs(t, err, checkouterrors.ErrSerialization)
}

func TestVoucherDelegate_HoldsVoucherForRendering(t *testing.T) {
	d := NewVoucherDelegate(logger.Nop())
	defer d.Teardown()
	d.Initialize(context.Background())

	require.Nil(t, d.Voucher())
	require.NoError(t, d.HandleAction(context.Background(), &checkout.Action{
		Type:      checkout.ActionTypeVoucher,
		Reference: "ref-1",
		TotalAmount: &checkout.Amount{
			Currency: "BRL",
			Value:    12500,
		},
	}))

	voucher := d.Voucher()
	require.NotNil(t, voucher)
	assert.Equal(t, "ref-1", voucher.Reference)
	assert.Equal(t, int64(12500), voucher.TotalAmount.Value)
}
