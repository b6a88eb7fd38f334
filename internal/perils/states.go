// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package perils

// states is the fixed search area, in query order.
var states = []string{
	"Arizona", "Colorado", "Connecticut", "Delaware", "Florida", "Georgia",
	"Idaho", "Indiana", "Iowa", "Kansas", "Kentucky", "Louisiana", "Maine",
	"Maryland", "Michigan", "Minnesota", "Mississippi", "Montana", "Nebraska",
	"Nevada", "New Hampshire", "New Jersey", "New Mexico", "North Carolina",
	"North Dakota", "Ohio", "Oklahoma", "Oregon", "South Carolina", "Tennessee",
	"Texas", "US Virgin Islands", "Utah", "Vermont", "Virginia", "Washington",
	"West Virginia", "Wisconsin", "Wyoming", "DC",
}

// States returns a copy of the 40 state identifiers the crawler searches.
func States() []string {
	out := make([]string, len(states))
	copy(out, states)
	return out
}
