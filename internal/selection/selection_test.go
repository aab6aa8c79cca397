package selection

import (
	"testing"

	"tableside/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMenuItem() model.MenuItem {
	return model.MenuItem{
		ID:        "I001",
		Name:      "Pho Bo",
		BasePrice: 50_000,
		Available: true,
		OptionGroups: []model.OptionGroup{
			{
				ID:   "G-TOP",
				Name: "Toppings",
				Mode: model.SelectionMulti,
				Options: []model.Option{
					{ID: "TOP-1", Name: "Extra beef", AdditionalPrice: 10_000},
					{ID: "TOP-2", Name: "Extra noodles", AdditionalPrice: 5_000},
				},
			},
			{
				ID:       "G-SIZE",
				Name:     "Size",
				Category: "size",
				Mode:     model.SelectionSingle,
				Options: []model.Option{
					{ID: "SIZE-S", Name: "Size S", AdditionalPrice: 0},
					{ID: "SIZE-M", Name: "Size M", AdditionalPrice: 0, IsDefault: true},
					{ID: "SIZE-L", Name: "Size L", AdditionalPrice: 15_000},
				},
			},
		},
	}
}

func TestNew_PriorityCategorySortsFirst(t *testing.T) {
	e := New(testMenuItem(), DefaultPolicy())

	groups := e.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, "G-SIZE", groups[0].ID)
	assert.Equal(t, "G-TOP", groups[1].ID)
}

func TestNew_PreselectsDefaultInSingleGroup(t *testing.T) {
	e := New(testMenuItem(), DefaultPolicy())

	assert.True(t, e.IsSelected("G-SIZE", "SIZE-M"))
	assert.False(t, e.IsSelected("G-SIZE", "SIZE-S"))
	assert.NoError(t, e.Validate())
}

func TestNew_NoDefaultsWhenPolicyDisabled(t *testing.T) {
	e := New(testMenuItem(), Policy{})

	assert.False(t, e.IsSelected("G-SIZE", "SIZE-M"))

	err := e.Validate()
	var unsatisfied *model.GroupUnsatisfiedError
	require.ErrorAs(t, err, &unsatisfied)
	assert.Equal(t, "Size", unsatisfied.Group)
}

func TestToggle_SingleGroupRadioSemantics(t *testing.T) {
	e := New(testMenuItem(), DefaultPolicy())

	require.NoError(t, e.Toggle("G-SIZE", "SIZE-L"))
	assert.True(t, e.IsSelected("G-SIZE", "SIZE-L"))
	assert.False(t, e.IsSelected("G-SIZE", "SIZE-M"))

	// Any toggle sequence leaves at most one selected option.
	require.NoError(t, e.Toggle("G-SIZE", "SIZE-S"))
	require.NoError(t, e.Toggle("G-SIZE", "SIZE-L"))
	selected := 0
	for _, id := range []string{"SIZE-S", "SIZE-M", "SIZE-L"} {
		if e.IsSelected("G-SIZE", id) {
			selected++
		}
	}
	assert.Equal(t, 1, selected)
}

func TestToggle_MultiGroupCheckboxSemantics(t *testing.T) {
	e := New(testMenuItem(), DefaultPolicy())

	require.NoError(t, e.Toggle("G-TOP", "TOP-1"))
	require.NoError(t, e.Toggle("G-TOP", "TOP-2"))
	assert.True(t, e.IsSelected("G-TOP", "TOP-1"))
	assert.True(t, e.IsSelected("G-TOP", "TOP-2"))

	// Toggling one option does not affect its siblings.
	require.NoError(t, e.Toggle("G-TOP", "TOP-1"))
	assert.False(t, e.IsSelected("G-TOP", "TOP-1"))
	assert.True(t, e.IsSelected("G-TOP", "TOP-2"))
}

func TestToggle_UnknownOption(t *testing.T) {
	e := New(testMenuItem(), DefaultPolicy())

	assert.ErrorIs(t, e.Toggle("G-TOP", "NOPE"), model.ErrOptionNotFound)
	assert.ErrorIs(t, e.Toggle("NOPE", "TOP-1"), model.ErrOptionNotFound)
}

func TestApply(t *testing.T) {
	e := New(testMenuItem(), DefaultPolicy())

	require.NoError(t, e.Apply([]string{"SIZE-L", "TOP-1"}))
	assert.True(t, e.IsSelected("G-SIZE", "SIZE-L"))
	assert.True(t, e.IsSelected("G-TOP", "TOP-1"))
	// Submitting a size replaces the pre-selected default.
	assert.False(t, e.IsSelected("G-SIZE", "SIZE-M"))

	assert.ErrorIs(t, e.Apply([]string{"NOPE"}), model.ErrOptionNotFound)
}

func TestApply_KeepsDefaultForUntouchedGroup(t *testing.T) {
	e := New(testMenuItem(), DefaultPolicy())

	// The submission only names a topping; the size group is untouched and
	// keeps its default.
	require.NoError(t, e.Apply([]string{"TOP-1"}))
	assert.True(t, e.IsSelected("G-SIZE", "SIZE-M"))
	assert.True(t, e.IsSelected("G-TOP", "TOP-1"))
	assert.NoError(t, e.Validate())

	assert.Equal(t, int64(60_000), e.Total(1))
}

func TestValidate_MultiGroupAlwaysValid(t *testing.T) {
	item := model.MenuItem{
		ID:        "I002",
		BasePrice: 30_000,
		OptionGroups: []model.OptionGroup{
			{
				ID:   "G-TOP",
				Name: "Toppings",
				Mode: model.SelectionMulti,
				Options: []model.Option{
					{ID: "TOP-1", Name: "Cheese", AdditionalPrice: 8_000},
				},
			},
		},
	}

	e := New(item, DefaultPolicy())
	assert.NoError(t, e.Validate())
}

func TestSelectedAndTotal(t *testing.T) {
	e := New(testMenuItem(), DefaultPolicy())
	require.NoError(t, e.Toggle("G-TOP", "TOP-1"))

	selected := e.Selected()
	require.Len(t, selected, 2)
	// Snapshots come out in display order: size group first.
	assert.Equal(t, model.SelectedOption{
		OptionID:        "SIZE-M",
		GroupName:       "Size",
		OptionName:      "Size M",
		AdditionalPrice: 0,
	}, selected[0])
	assert.Equal(t, model.SelectedOption{
		OptionID:        "TOP-1",
		GroupName:       "Toppings",
		OptionName:      "Extra beef",
		AdditionalPrice: 10_000,
	}, selected[1])

	assert.Equal(t, int64(120_000), e.Total(2))
}
