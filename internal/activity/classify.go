package activity

import (
	"strings"
	"unicode"
)

// Classification is the result of mapping a raw provider type
type Classification struct {
	Sport Sport `json:"sport"`
	// Label is the normalized snake_case key of the raw type
	Label       string `json:"label"`
	DisplayName string `json:"display_name"`
	// Group is the sub-type bucket used by the cycling breakdown
	Group string `json:"group,omitempty"`
	Known bool   `json:"known"`
}

type typeEntry struct {
	sport   Sport
	display string
	group   string
}

// typeKeys follows the provider's activity type keys
var typeKeys = map[string]typeEntry{
	"running":           {sport: SportRunning, display: "Running"},
	"trail_running":     {sport: SportRunning, display: "Trail Running"},
	"treadmill_running": {sport: SportRunning, display: "Treadmill Running"},
	"indoor_running":    {sport: SportRunning, display: "Indoor Running"},
	"track_running":     {sport: SportRunning, display: "Track Running"},
	"virtual_running":   {sport: SportRunning, display: "Virtual Running"},
	"ultra_running":     {sport: SportRunning, display: "Ultra Running"},
	"obstacle_run":      {sport: SportRunning, display: "Obstacle Run"},

	"cycling":         {sport: SportCycling, display: "Cycling", group: "cycling"},
	"road_biking":     {sport: SportCycling, display: "Road Cycling", group: "road"},
	"mountain_biking": {sport: SportCycling, display: "Mountain Biking", group: "mountain"},
	"gravel_cycling":  {sport: SportCycling, display: "Gravel Cycling", group: "gravel"},
	"indoor_cycling":  {sport: SportCycling, display: "Indoor Cycling", group: "indoor"},
	"virtual_ride":    {sport: SportCycling, display: "Virtual Ride", group: "virtual"},
	"e_bike":          {sport: SportCycling, display: "E-Bike", group: "e_bike"},
	"e_bike_mountain": {sport: SportCycling, display: "E-Mountain Bike", group: "e_bike"},
	"e_bike_fitness":  {sport: SportCycling, display: "E-Bike Fitness", group: "e_bike"},
	"bmx":             {sport: SportCycling, display: "BMX", group: "bmx"},
	"cyclocross":      {sport: SportCycling, display: "Cyclocross", group: "gravel"},
	"commuting":       {sport: SportCycling, display: "Commuting", group: "commuting"},
	"spin":            {sport: SportCycling, display: "Spinning", group: "indoor"},

	"swimming":            {sport: SportSwimming, display: "Swimming"},
	"lap_swimming":        {sport: SportSwimming, display: "Pool Swimming"},
	"open_water_swimming": {sport: SportSwimming, display: "Open Water Swimming"},

	"walking":        {sport: SportWalking, display: "Walking"},
	"casual_walking": {sport: SportWalking, display: "Casual Walking"},
	"speed_walking":  {sport: SportWalking, display: "Speed Walking"},

	"hiking":         {sport: SportHiking, display: "Hiking"},
	"mountaineering": {sport: SportHiking, display: "Mountaineering"},

	"strength_training":   {sport: SportStrength, display: "Strength Training"},
	"cardio":              {sport: SportStrength, display: "Cardio"},
	"indoor_cardio":       {sport: SportStrength, display: "Indoor Cardio"},
	"hiit":                {sport: SportStrength, display: "HIIT"},
	"functional_training": {sport: SportStrength, display: "Functional Training"},
	"crossfit":            {sport: SportStrength, display: "CrossFit"},
	"bootcamp":            {sport: SportStrength, display: "Bootcamp"},
	"circuit_training":    {sport: SportStrength, display: "Circuit Training"},
	"elliptical":          {sport: SportStrength, display: "Elliptical"},
	"stair_stepper":       {sport: SportStrength, display: "Stair Stepper"},
	"floor_climbing":      {sport: SportStrength, display: "Floor Climbing"},
	"rowing":              {sport: SportStrength, display: "Rowing"},
	"indoor_rowing":       {sport: SportStrength, display: "Indoor Rowing"},
	"pilates":             {sport: SportStrength, display: "Pilates"},
	"breathwork":          {sport: SportStrength, display: "Breathwork"},
	"bouldering":          {sport: SportStrength, display: "Bouldering"},
	"indoor_climbing":     {sport: SportStrength, display: "Indoor Climbing"},
	"climbing":            {sport: SportStrength, display: "Climbing"},
	"rock_climbing":       {sport: SportStrength, display: "Rock Climbing"},

	"yoga":       {sport: SportYoga, display: "Yoga"},
	"meditation": {sport: SportYoga, display: "Meditation"},
	"stretching": {sport: SportYoga, display: "Stretching"},

	"volleyball":                 {sport: SportOther, display: "Volleyball"},
	"beach_volleyball":           {sport: SportOther, display: "Beach Volleyball"},
	"tennis":                     {sport: SportOther, display: "Tennis"},
	"badminton":                  {sport: SportOther, display: "Badminton"},
	"soccer":                     {sport: SportOther, display: "Soccer"},
	"football":                   {sport: SportOther, display: "Football"},
	"basketball":                 {sport: SportOther, display: "Basketball"},
	"golf":                       {sport: SportOther, display: "Golf"},
	"squash":                     {sport: SportOther, display: "Squash"},
	"table_tennis":               {sport: SportOther, display: "Table Tennis"},
	"kayaking":                   {sport: SportOther, display: "Kayaking"},
	"stand_up_paddleboarding":    {sport: SportOther, display: "SUP"},
	"stand_up_paddleboarding_v2": {sport: SportOther, display: "SUP"},
	"surfing":                    {sport: SportOther, display: "Surfing"},
	"sailing":                    {sport: SportOther, display: "Sailing"},
	"skiing":                     {sport: SportOther, display: "Skiing"},
	"snowboarding":               {sport: SportOther, display: "Snowboarding"},
	"cross_country_skiing":       {sport: SportOther, display: "Cross-Country Skiing"},
	"backcountry_skiing":         {sport: SportOther, display: "Backcountry Skiing"},
	"multi_sport":                {sport: SportOther, display: "Multisport"},
	"transition":                 {sport: SportOther, display: "Transition"},
	"other":                      {sport: SportOther, display: "Other"},
}

// aliases maps export display names, including localized ones, onto type keys
var aliases = map[string]string{
	"run":                    "running",
	"laufen":                 "running",
	"trail_lauf":             "trail_running",
	"laufband":               "treadmill_running",
	"laufbandtraining":       "treadmill_running",
	"indoor_laufen":          "indoor_running",
	"bahnlauf":               "track_running",
	"virtuelles_laufen":      "virtual_running",
	"radfahren":              "cycling",
	"bike":                   "cycling",
	"ride":                   "cycling",
	"road_cycling":           "road_biking",
	"rennrad":                "road_biking",
	"mountainbiken":          "mountain_biking",
	"gravel_radfahren":       "gravel_cycling",
	"indoor_rad":             "indoor_cycling",
	"virtuelles_radfahren":   "virtual_ride",
	"e_bike_cycling":         "e_bike",
	"e_bike_fahren":          "e_bike",
	"spinning":               "spin",
	"pendeln":                "commuting",
	"schwimmen":              "swimming",
	"pool_swimming":          "lap_swimming",
	"pool_swim":              "lap_swimming",
	"poolschwimmen":          "lap_swimming",
	"bahnschwimmen":          "lap_swimming",
	"freiwasserschwimmen":    "open_water_swimming",
	"gehen":                  "walking",
	"walk":                   "walking",
	"wandern":                "hiking",
	"hike":                   "hiking",
	"bergsteigen":            "mountaineering",
	"krafttraining":          "strength_training",
	"funktionelles_training": "functional_training",
	"zirkeltraining":         "circuit_training",
	"crosstrainer":           "elliptical",
	"stepper":                "stair_stepper",
	"rudern":                 "rowing",
	"indoor_rudern":          "indoor_rowing",
	"atemübungen":            "breathwork",
	"treppensteigen":         "floor_climbing",
	"bouldern":               "bouldering",
	"indoor_klettern":        "indoor_climbing",
	"klettern":               "climbing",
	"beachvolleyball":        "beach_volleyball",
	"fußball":                "soccer",
	"tischtennis":            "table_tennis",
	"dehnen":                 "stretching",
	"multisport":             "multi_sport",
	"sup":                    "stand_up_paddleboarding",
}

// NormalizeLabel lowercases raw and turns spaces and hyphens into underscores
func NormalizeLabel(raw string) string {
	fields := strings.FieldsFunc(strings.ToLower(strings.TrimSpace(raw)), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '\t'
	})
	return strings.Join(fields, "_")
}

// Classify maps a provider type key or display name onto a Sport. Unknown
// types fall into SportOther with Known set to false.
func Classify(raw string) Classification {
	label := NormalizeLabel(raw)
	if label == "" {
		return Classification{Sport: SportOther, Label: "other", DisplayName: "Other"}
	}
	key := label
	if target, ok := aliases[label]; ok {
		key = target
	}
	if e, ok := typeKeys[key]; ok {
		c := Classification{Sport: e.sport, Label: key, DisplayName: e.display, Group: e.group, Known: true}
		if e.sport == SportCycling && c.Group == "" {
			c.Group = "cycling"
		}
		return c
	}
	return Classification{Sport: SportOther, Label: label, DisplayName: titleCase(label)}
}

// DisplayName returns the human readable name for a normalized label
func DisplayName(label string) string {
	return Classify(label).DisplayName
}

// CyclingGroup returns the breakdown bucket for a cycling sub-type label
func CyclingGroup(label string) string {
	c := Classify(label)
	if c.Sport != SportCycling {
		return "cycling"
	}
	return c.Group
}

func titleCase(label string) string {
	words := strings.Split(label, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
