package pricing

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/avillegasn/agenda-api/internal/model"
)

func TestQuoteStudentTiers(t *testing.T) {
    cases := []struct {
        count int
        unit  int64
    }{
        {1, 1200}, {4, 1200},
        {5, 1050}, {6, 1050},
        {7, 980}, {8, 980},
        {9, 910}, {10, 910},
        {11, 860}, {25, 860},
    }
    for _, tc := range cases {
        q, err := Quote(model.AttendeeStudent, tc.count, model.DeliveryOnsite)
        require.NoError(t, err)
        assert.Equal(t, tc.unit, q.UnitPrice, "count %d", tc.count)
        assert.Equal(t, tc.unit*int64(tc.count), q.TotalPrice, "count %d", tc.count)
        assert.Equal(t, Currency, q.Currency)
    }
}

func TestQuoteLargeStudentGroupOnsite(t *testing.T) {
    q, err := Quote(model.AttendeeStudent, 11, model.DeliveryOnsite)
    require.NoError(t, err)
    assert.Equal(t, int64(860), q.UnitPrice)
    assert.Equal(t, int64(9460), q.TotalPrice)
}

func TestQuoteOnlineDiscountFloors(t *testing.T) {
    onsite, err := Quote(model.AttendeeProfessional, 3, model.DeliveryOnsite)
    require.NoError(t, err)
    online, err := Quote(model.AttendeeProfessional, 3, model.DeliveryOnline)
    require.NoError(t, err)

    assert.Equal(t, int64(1750), onsite.UnitPrice)
    assert.Equal(t, int64(1575), online.UnitPrice) // 1750 - 10%
    assert.Equal(t, online.UnitPrice*3, online.TotalPrice)

    // A unit that does not divide evenly rounds down before multiplying.
    q, err := Quote(model.AttendeeStudent, 7, model.DeliveryOnline)
    require.NoError(t, err)
    assert.Equal(t, int64(882), q.UnitPrice) // floor(980 * 0.9)
    assert.Equal(t, int64(6174), q.TotalPrice)
}

func TestQuoteUnitPriceNeverIncreasesWithGroupSize(t *testing.T) {
    for _, ticket := range []model.AttendeeType{model.AttendeeStudent, model.AttendeeProfessional} {
        prev := int64(1 << 62)
        for n := 1; n <= 30; n++ {
            q, err := Quote(ticket, n, model.DeliveryOnsite)
            require.NoError(t, err)
            assert.LessOrEqual(t, q.UnitPrice, prev, "%s at %d", ticket, n)
            prev = q.UnitPrice
        }
    }
}

func TestQuoteCompanyFlatTable(t *testing.T) {
    q, err := Quote(model.AttendeeCompany, 7, model.DeliveryOnsite)
    require.NoError(t, err)
    assert.Equal(t, int64(20500), q.TotalPrice)
    assert.Zero(t, q.UnitPrice) // flat pricing has no per-head unit

    // Below the corporate minimum is a validation error.
    _, err = Quote(model.AttendeeCompany, 4, model.DeliveryOnsite)
    require.Error(t, err)
    assert.True(t, model.IsValidation(err))

    // Above the table cap the price plateaus.
    capped, err := Quote(model.AttendeeCompany, 12, model.DeliveryOnsite)
    require.NoError(t, err)
    above, err := Quote(model.AttendeeCompany, 40, model.DeliveryOnsite)
    require.NoError(t, err)
    assert.Equal(t, capped.TotalPrice, above.TotalPrice)
    assert.Equal(t, 40, above.AttendeeCount)
}

func TestQuoteCompanyIgnoresDeliveryDiscount(t *testing.T) {
    onsite, err := Quote(model.AttendeeCompany, 6, model.DeliveryOnsite)
    require.NoError(t, err)
    online, err := Quote(model.AttendeeCompany, 6, model.DeliveryOnline)
    require.NoError(t, err)
    assert.Equal(t, onsite.TotalPrice, online.TotalPrice)
}

func TestQuoteRejectsZeroAttendees(t *testing.T) {
    _, err := Quote(model.AttendeeStudent, 0, model.DeliveryOnsite)
    require.Error(t, err)
    assert.True(t, model.IsValidation(err))
}

func TestQuoteForCategoryFreeIsAlwaysZero(t *testing.T) {
    for _, ticket := range []model.AttendeeType{model.AttendeeStudent, model.AttendeeProfessional, model.AttendeeCompany} {
        q, err := QuoteForCategory(model.CategoryInstitutionalFree, ticket, 9, model.DeliveryOnsite)
        require.NoError(t, err)
        assert.Zero(t, q.TotalPrice)
        assert.Zero(t, q.UnitPrice)
        assert.Equal(t, Currency, q.Currency)
    }
}

func TestQuoteForCategoryPaidDelegates(t *testing.T) {
    q, err := QuoteForCategory(model.CategoryPublicWorkshop, model.AttendeeStudent, 2, model.DeliveryOnsite)
    require.NoError(t, err)
    assert.Equal(t, int64(2400), q.TotalPrice)
}
