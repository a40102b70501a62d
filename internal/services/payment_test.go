// Файл: internal/services/payment_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountToCents(t *testing.T) {
	testCases := []struct {
		name    string
		amount  string
		want    int64
		wantErr bool
	}{
		{name: "целое число", amount: "49", want: 4900},
		{name: "с копейками", amount: "49.99", want: 4999},
		{name: "один знак после точки", amount: "49.9", want: 4990},
		{name: "пробелы по краям", amount: " 10.00 ", want: 1000},
		{name: "минимальная сумма", amount: "0.01", want: 1},
		{name: "пустая строка", amount: "", wantErr: true},
		{name: "ноль", amount: "0", wantErr: true},
		{name: "ноль с копейками", amount: "0.00", wantErr: true},
		{name: "отрицательная", amount: "-5", wantErr: true},
		{name: "минус ноль", amount: "-0.50", wantErr: true},
		{name: "минус в копейках", amount: "1.-5", wantErr: true},
		{name: "явный плюс", amount: "+10", wantErr: true},
		{name: "три знака после точки", amount: "10.999", wantErr: true},
		{name: "не число", amount: "десять", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cents, err := AmountToCents(tc.amount)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, cents)
		})
	}
}

func TestCentsToAmount(t *testing.T) {
	assert.Equal(t, "49.99", CentsToAmount(4999))
	assert.Equal(t, "10.00", CentsToAmount(1000))
	assert.Equal(t, "0.05", CentsToAmount(5))
}
