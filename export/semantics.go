package export

// PhaseOrder is the display order of phase slugs.
var PhaseOrder = []string{
	"quiet",
	"eccentric_unloading",
	"eccentric_braking",
	"concentric",
	"flight",
	"landing",
}

// KeyPointOrder is the display order of key point slugs.
var KeyPointOrder = []string{
	"start_of_movement",
	"minimum_force",
	"eccentric_end",
	"velocity_zero",
	"take_off",
	"landing",
}

type phaseSemantic struct {
	name        string
	description string
	explanation string
}

var phaseSemantics = map[string]phaseSemantic{
	"quiet": {
		name:        "Quiet",
		description: "Standing still; force represents body weight",
		explanation: "Quiet stance before the countermovement; force equals body weight.",
	},
	"eccentric_unloading": {
		name:        "Eccentric - Unloading",
		description: "Force decreases as the body lowers",
		explanation: "The athlete relaxes into the dip and force falls below body weight (unweighting).",
	},
	"eccentric_braking": {
		name:        "Eccentric - Braking",
		description: "Force increases to stop the downward motion",
		explanation: "Force climbs back above body weight to decelerate the centre of mass.",
	},
	"concentric": {
		name:        "Concentric",
		description: "Push upwards until take-off",
		explanation: "The centre of mass moves upward and the athlete drives off the plate.",
	},
	"flight": {
		name:        "Flight",
		description: "Airborne; force plate reads near zero",
		explanation: "No contact with the plate between take-off and landing.",
	},
	"landing": {
		name:        "Landing",
		description: "Impact and absorption",
		explanation: "Touchdown and absorption of the landing load.",
	},
}

type keyPointSemantic struct {
	name        string
	explanation string
}

var keyPointSemantics = map[string]keyPointSemantic{
	"start_of_movement": {"Start of movement", "Countermovement onset; force first stays below the quiet-stance band."},
	"minimum_force":     {"Minimum force", "Lowest force of the unweighting dip."},
	"eccentric_end":     {"Peak eccentric velocity", "Fastest downward centre-of-mass velocity; braking begins to win."},
	"velocity_zero":     {"Velocity zero", "Bottom of the countermovement; velocity turns upward."},
	"take_off":          {"Take-off", "Last contact sample before flight."},
	"landing":           {"Landing", "First sustained contact after flight."},
}

var metricExplanations = map[string]string{
	"take_off_velocity_m_s":            "Vertical velocity at take-off from impulse-momentum (m/s).",
	"jump_height_impulse_m":            "Jump height from take-off velocity (m).",
	"time_to_takeoff_s":                "Time from movement onset to take-off (s).",
	"rsi_mod":                          "Modified reactive strength index: impulse jump height / time to take-off.",
	"flight_time_s":                    "Time airborne between take-off and landing (s).",
	"jump_height_flight_m":             "Jump height from flight time, g*t^2/8 (m).",
	"peak_power_W":                     "Peak instantaneous power (force x velocity) during contact (W).",
	"peak_rfd_N_per_s":                 "Peak rate of force development during contact (N/s).",
	"max_rfd_index":                    "Sample index of peak RFD.",
	"max_rfd_time_s":                   "Time of peak RFD (s).",
	"rfd_0_100ms_N_per_s":              "Peak RFD in the first 100 ms after onset (N/s).",
	"rfd_0_200ms_N_per_s":              "Peak RFD in the first 200 ms after onset (N/s).",
	"peak_rfd_eccentric_N_per_s":       "Peak RFD from onset to velocity zero (N/s).",
	"peak_rfd_concentric_N_per_s":      "Peak RFD from velocity zero to take-off (N/s).",
	"unweighting_impulse_Ns":           "Net impulse from onset to minimum force (N*s).",
	"unweighting_time_s":               "Duration from onset to minimum force (s).",
	"braking_impulse_Ns":               "Net impulse from minimum force to velocity zero (N*s).",
	"braking_time_s":                   "Duration from minimum force to velocity zero (s).",
	"propulsion_impulse_Ns":            "Net impulse from velocity zero to take-off (N*s).",
	"propulsion_time_s":                "Duration from velocity zero to take-off (s).",
	"eccentric_time_s":                 "Duration from onset to peak eccentric velocity (s).",
	"min_force_N":                      "Force at the bottom of the unweighting dip (N).",
	"peak_eccentric_velocity_m_s":      "Peak downward velocity magnitude during the countermovement (m/s).",
	"peak_concentric_force_N":          "Maximum force from velocity zero to take-off (N).",
	"mean_concentric_force_N":          "Mean force from velocity zero to take-off (N).",
	"countermovement_depth_m":          "Lowest centre-of-mass displacement relative to onset (m).",
	"com_displacement_at_takeoff_m":    "Centre-of-mass displacement at take-off relative to onset (m).",
	"peak_force_asymmetry_pct":         "Left-right asymmetry in peak concentric force (%, positive = left).",
	"concentric_impulse_asymmetry_pct": "Left-right asymmetry in concentric impulse (%, positive = left).",
	"eccentric_impulse_asymmetry_pct":  "Left-right asymmetry in unweighting impulse (%, positive = left).",
	"rfd_asymmetry_pct":                "Left-right asymmetry in peak RFD (%, positive = left).",
}

// MetricExplanation returns the plain-language description of a metric, or
// an empty string for unknown names.
func MetricExplanation(name string) string {
	return metricExplanations[name]
}
