package eac

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimaryAmount(t *testing.T) {
	cert := Certificate{Amounts: AmountList{
		{Amount: 5, Unit: "MWh"},
		{Amount: 100, Unit: "MWh", IsPrimary: true},
	}}

	a, ok := cert.PrimaryAmount()
	require.True(t, ok)
	assert.Equal(t, "100 MWh", a.Display())
}

func TestPrimaryAmountFallsBackToFirst(t *testing.T) {
	cert := Certificate{Amounts: AmountList{{Amount: 10, Unit: "MWh"}}}

	a, ok := cert.PrimaryAmount()
	require.True(t, ok)
	assert.Equal(t, "10 MWh", a.Display())
}

func TestPrimaryAmountEmpty(t *testing.T) {
	_, ok := Certificate{}.PrimaryAmount()
	assert.False(t, ok)
}

func TestAmountDisplay(t *testing.T) {
	assert.Equal(t, "1.5 tCO2e", Amount{Amount: 1.5, Unit: "tCO2e"}.Display())
	assert.Equal(t, "10", Amount{Amount: 10}.Display())
}

func TestLocationSummary(t *testing.T) {
	loc := Location{Address: "1 Main St", Region: "Bavaria", Country: "Germany"}
	assert.Equal(t, "1 Main St, Bavaria, Germany", loc.Summary())

	assert.Equal(t, "Germany", Location{Country: "Germany"}.Summary())
	assert.Equal(t, "", Location{}.Summary())
}

func TestStringListUnmarshalJSON(t *testing.T) {
	var many StringList
	require.NoError(t, json.Unmarshal([]byte(`["a","b"]`), &many))
	assert.Equal(t, StringList{"a", "b"}, many)

	var one StringList
	require.NoError(t, json.Unmarshal([]byte(`"solar"`), &one))
	assert.Equal(t, StringList{"solar"}, one)

	var empty StringList
	require.NoError(t, json.Unmarshal([]byte(`""`), &empty))
	assert.Nil(t, empty)
}

func TestCertificateTypeName(t *testing.T) {
	assert.Equal(t, "Renewable Energy Certificate", CertificateTypeREC.Name())
	assert.Equal(t, "Carbon Credit", CertificateTypeCC.Name())
	assert.Equal(t, "XYZ", CertificateType("XYZ").Name())
}
