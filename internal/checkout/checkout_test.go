package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gsaan/gsaan-backend/internal/app/model"
	"github.com/gsaan/gsaan-backend/internal/cart"
	"github.com/gsaan/gsaan-backend/internal/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() Form {
	return Form{
		FullName:     "Lakshmi Narayanan",
		Phone:        "9876543210",
		AddressLine1: "12, Gandhi Road",
		City:         "Salem",
		Pincode:      "636001",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(f *Form)
		wantField string
		wantMsg   string
	}{
		{"short phone", func(f *Form) { f.Phone = "98765432" }, "phone", "Please enter a valid 10-digit mobile number"},
		{"phone starting with 5", func(f *Form) { f.Phone = "5876543210" }, "phone", "Please enter a valid 10-digit mobile number"},
		{"five digit pincode", func(f *Form) { f.Pincode = "12345" }, "pincode", "Please enter a valid 6-digit pincode"},
		{"pincode starting with 0", func(f *Form) { f.Pincode = "012345" }, "pincode", "Please enter a valid 6-digit pincode"},
		{"blank name", func(f *Form) { f.FullName = "   " }, "full_name", "Full name is required"},
		{"blank address", func(f *Form) { f.AddressLine1 = "" }, "address_line1", "Address is required"},
		{"blank city", func(f *Form) { f.City = "\t" }, "city", "City is required"},
		{"bad email", func(f *Form) { f.Email = "lakshmi@" }, "email", "Please enter a valid email address"},
		{"bad whatsapp", func(f *Form) { f.WhatsApp = "12345" }, "whatsapp", "Please enter a valid 10-digit mobile number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(&f)

			errs := Validate(f)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.wantMsg, errs[tt.wantField])
		})
	}
}

func TestValidate_Passes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *Form)
	}{
		{"plain", func(f *Form) {}},
		{"formatted phone", func(f *Form) { f.Phone = "98765 43210" }},
		{"country code", func(f *Form) { f.Phone = "+91 98765 43210" }},
		{"pincode 600001", func(f *Form) { f.Pincode = "600001" }},
		{"optional email", func(f *Form) { f.Email = "lakshmi@example.com" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(&f)
			assert.Nil(t, Validate(f))
		})
	}
}

func TestValidate_CollectsAllFields(t *testing.T) {
	errs := Validate(Form{})

	assert.Len(t, errs, 5)
	for _, field := range []string{"full_name", "phone", "address_line1", "city", "pincode"} {
		assert.Contains(t, errs, field)
	}

	var asErr error = errs
	var fe FieldErrors
	require.True(t, errors.As(asErr, &fe))
	assert.Contains(t, asErr.Error(), "address_line1")
}

func fixedGenerator(t *testing.T, now time.Time, suffixes ...string) *NumberGenerator {
	t.Helper()
	g := NewNumberGenerator("GSAAN", time.UTC)
	g.Now = func() time.Time { return now }
	i := 0
	g.Suffix = func() (string, error) {
		s := suffixes[i%len(suffixes)]
		i++
		return s, nil
	}
	return g
}

func TestNumberGenerator_Format(t *testing.T) {
	g := NewNumberGenerator("GSAAN", time.UTC)
	now := time.Now().UTC()

	number, err := g.Generate(context.Background(), nil)
	require.NoError(t, err)

	assert.Regexp(t, `^GSAAN-\d{8}-[A-Z0-9]{4}$`, number)
	assert.True(t, NumberPattern.MatchString(number))
	assert.Equal(t, now.Format("20060102"), number[6:14])
}

func TestNumberGenerator_UsesLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*60*60+30*60)
	g := fixedGenerator(t, time.Date(2025, 3, 31, 20, 0, 0, 0, time.UTC), "AB12")
	g.Location = ist

	number, err := g.Next()
	require.NoError(t, err)
	assert.Equal(t, "GSAAN-20250401-AB12", number)
}

func TestNumberGenerator_RetriesOnCollision(t *testing.T) {
	g := fixedGenerator(t, time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC), "AAAA", "BBBB", "CCCC")
	taken := map[string]bool{
		"GSAAN-20250115-AAAA": true,
		"GSAAN-20250115-BBBB": true,
	}

	var checked []string
	number, err := g.Generate(context.Background(), func(_ context.Context, n string) (bool, error) {
		checked = append(checked, n)
		return taken[n], nil
	})

	require.NoError(t, err)
	assert.Equal(t, "GSAAN-20250115-CCCC", number)
	assert.Len(t, checked, 3)
}

func TestNumberGenerator_Exhausted(t *testing.T) {
	g := fixedGenerator(t, time.Now(), "ZZZZ")

	_, err := g.Generate(context.Background(), func(context.Context, string) (bool, error) {
		return true, nil
	})
	assert.ErrorIs(t, err, ErrNumberExhausted)
}

func TestNumberGenerator_ExistsError(t *testing.T) {
	g := fixedGenerator(t, time.Now(), "ZZZZ")
	boom := errors.New("db down")

	_, err := g.Generate(context.Background(), func(context.Context, string) (bool, error) {
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestAssemble_EndToEndTotals(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	lines := []cart.LineItem{
		{ID: "a-x", ProductID: "a", ProductName: "Camphor", VariantID: "x", VariantName: "50g", Price: 100, Quantity: 2, ProductImage: "https://cdn/a.jpg"},
		{ID: "b-y", ProductID: "b", ProductName: "Agarbatti", VariantID: "y", VariantName: "12 Sticks", Price: 50, Quantity: 1},
	}

	order, err := Assemble(AssembleInput{
		Number: "GSAAN-20250115-AB12",
		Form:   validForm(),
		Items:  lines,
		Policy: pricing.DefaultPolicy(),
		Now:    now,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(250), order.Subtotal)
	assert.Equal(t, int64(49), order.DeliveryCharge)
	assert.Equal(t, int64(0), order.Discount)
	assert.Equal(t, int64(299), order.Total)
	assert.Equal(t, order.Subtotal+order.DeliveryCharge-order.Discount, order.Total)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, now, order.CreatedAt)

	require.Len(t, order.Items, 2)
	assert.Equal(t, int64(200), order.Items[0].TotalPrice)
	assert.Equal(t, int64(100), order.Items[0].UnitPrice)
	assert.Equal(t, "https://cdn/a.jpg", order.Items[0].ThumbnailURL)
	assert.Equal(t, "12 Sticks", order.Items[1].VariantName)

	require.Len(t, order.StatusHistory, 1)
	assert.Equal(t, model.OrderStatusPending, order.StatusHistory[0].Status)

	assert.Equal(t, "Salem", order.Customer.Address.District)
	assert.Equal(t, "Tamil Nadu", order.Customer.Address.State)
	assert.Equal(t, "India", order.Customer.Address.Country)
}

func TestAssemble_SnapshotIsByValue(t *testing.T) {
	lines := []cart.LineItem{{ProductID: "a", ProductName: "Camphor", VariantID: "x", Price: 100, Quantity: 1}}

	order, err := Assemble(AssembleInput{Number: "N", Form: validForm(), Items: lines, Policy: pricing.DefaultPolicy(), Now: time.Now()})
	require.NoError(t, err)

	lines[0].ProductName = "Renamed"
	lines[0].Price = 999
	assert.Equal(t, "Camphor", order.Items[0].ProductName)
	assert.Equal(t, int64(100), order.Items[0].UnitPrice)
}

func TestAssemble_NormalizesContact(t *testing.T) {
	f := validForm()
	f.Phone = "+91 98765-43210"
	f.WhatsApp = "91 9123456789"
	f.Pincode = "636 001"

	order, err := Assemble(AssembleInput{Number: "N", Form: f, Items: []cart.LineItem{{ProductID: "a", VariantID: "x", Price: 600, Quantity: 1}}, Policy: pricing.DefaultPolicy(), Now: time.Now()})
	require.NoError(t, err)

	assert.Equal(t, "9876543210", order.Customer.Phone)
	assert.Equal(t, "9123456789", order.Customer.WhatsApp)
	assert.Equal(t, "636001", order.Customer.Address.Pincode)
	assert.Zero(t, order.DeliveryCharge)
}

func TestAssemble_EmptyCart(t *testing.T) {
	_, err := Assemble(AssembleInput{Number: "N", Form: validForm(), Policy: pricing.DefaultPolicy(), Now: time.Now()})
	assert.ErrorIs(t, err, ErrEmptyCart)
}
