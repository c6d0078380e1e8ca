package entities

// DungeonRequirement asks for a number of victories in one dungeon
type DungeonRequirement struct {
	DungeonID           string `json:"dungeon_id" yaml:"dungeon_id"`
	RequiredCompletions int32  `json:"required_completions" yaml:"required_completions"`
}

// ItemRequirement asks for owned items. Consume removes them when the
// advancement is applied.
type ItemRequirement struct {
	ItemID   string `json:"item_id" yaml:"item_id"`
	Quantity int32  `json:"quantity" yaml:"quantity"`
	Consume  bool   `json:"consume,omitempty" yaml:"consume,omitempty"`
}

// StatRequirement asks for an aggregate stat total and optional per-stat floors
type StatRequirement struct {
	MinTotal int64     `json:"min_total,omitempty" yaml:"min_total,omitempty"`
	Min      StatBlock `json:"min,omitempty" yaml:"min,omitempty"`
}

// Requirements is the typed requirement document carried by classes and
// mappings. Zero values mean the category is absent.
type Requirements struct {
	Dungeons           []DungeonRequirement `json:"dungeons,omitempty" yaml:"dungeons,omitempty"`
	Quests             []string             `json:"quests,omitempty" yaml:"quests,omitempty"`
	Items              []ItemRequirement    `json:"items,omitempty" yaml:"items,omitempty"`
	Stats              *StatRequirement     `json:"stats,omitempty" yaml:"stats,omitempty"`
	Achievements       []string             `json:"achievements,omitempty" yaml:"achievements,omitempty"`
	MinPvPRank         int32                `json:"min_pvp_rank,omitempty" yaml:"min_pvp_rank,omitempty"`
	MinGuildLevel      int32                `json:"min_guild_level,omitempty" yaml:"min_guild_level,omitempty"`
	MinPlaytimeMinutes int64                `json:"min_playtime_minutes,omitempty" yaml:"min_playtime_minutes,omitempty"`
}

// IsEmpty reports whether no category is set
func (r *Requirements) IsEmpty() bool {
	if r == nil {
		return true
	}
	return len(r.Dungeons) == 0 && len(r.Quests) == 0 && len(r.Items) == 0 &&
		r.Stats == nil && len(r.Achievements) == 0 &&
		r.MinPvPRank == 0 && r.MinGuildLevel == 0 && r.MinPlaytimeMinutes == 0
}

// Merge combines two requirement documents. Lists are unioned by id keeping
// the larger count, thresholds take the maximum. Either side may be nil.
func (r *Requirements) Merge(other *Requirements) *Requirements {
	out := &Requirements{}
	for _, src := range []*Requirements{r, other} {
		if src == nil {
			continue
		}
		for _, d := range src.Dungeons {
			out.Dungeons = mergeDungeon(out.Dungeons, d)
		}
		for _, q := range src.Quests {
			out.Quests = appendUnique(out.Quests, q)
		}
		for _, it := range src.Items {
			out.Items = mergeItem(out.Items, it)
		}
		for _, a := range src.Achievements {
			out.Achievements = appendUnique(out.Achievements, a)
		}
		if src.Stats != nil {
			out.Stats = mergeStats(out.Stats, src.Stats)
		}
		out.MinPvPRank = max(out.MinPvPRank, src.MinPvPRank)
		out.MinGuildLevel = max(out.MinGuildLevel, src.MinGuildLevel)
		out.MinPlaytimeMinutes = max(out.MinPlaytimeMinutes, src.MinPlaytimeMinutes)
	}
	return out
}

func mergeDungeon(list []DungeonRequirement, d DungeonRequirement) []DungeonRequirement {
	for i := range list {
		if list[i].DungeonID == d.DungeonID {
			list[i].RequiredCompletions = max(list[i].RequiredCompletions, d.RequiredCompletions)
			return list
		}
	}
	return append(list, d)
}

func mergeItem(list []ItemRequirement, it ItemRequirement) []ItemRequirement {
	for i := range list {
		if list[i].ItemID == it.ItemID {
			list[i].Quantity = max(list[i].Quantity, it.Quantity)
			list[i].Consume = list[i].Consume || it.Consume
			return list
		}
	}
	return append(list, it)
}

func mergeStats(a, b *StatRequirement) *StatRequirement {
	if a == nil {
		c := *b
		return &c
	}
	return &StatRequirement{
		MinTotal: max(a.MinTotal, b.MinTotal),
		Min: StatBlock{
			Strength:     max(a.Min.Strength, b.Min.Strength),
			Intelligence: max(a.Min.Intelligence, b.Min.Intelligence),
			Dexterity:    max(a.Min.Dexterity, b.Min.Dexterity),
			Vitality:     max(a.Min.Vitality, b.Min.Vitality),
			Luck:         max(a.Min.Luck, b.Min.Luck),
		},
	}
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// MissingDungeon reports a dungeon short of victories
type MissingDungeon struct {
	DungeonID string `json:"dungeon_id"`
	Required  int32  `json:"required"`
	Current   int32  `json:"current"`
}

// MissingItem reports an item the character does not own enough of
type MissingItem struct {
	ItemID   string `json:"item_id"`
	Required int32  `json:"required"`
	Current  int32  `json:"current"`
}

// MissingStats reports stats below the requested floors
type MissingStats struct {
	RequiredTotal int64     `json:"required_total,omitempty"`
	CurrentTotal  int64     `json:"current_total"`
	Below         []string  `json:"below,omitempty"`
	Required      StatBlock `json:"required"`
	Current       StatBlock `json:"current"`
}

// MissingThreshold reports a numeric floor that was not reached
type MissingThreshold struct {
	Required int64 `json:"required"`
	Current  int64 `json:"current"`
}

// MissingRequirements is the structured diagnostic for unmet requirements
type MissingRequirements struct {
	NoAdvancementPath bool              `json:"no_advancement_path,omitempty"`
	Level             *MissingThreshold `json:"level,omitempty"`
	Dungeons          []MissingDungeon  `json:"dungeons,omitempty"`
	Quests            []string          `json:"quests,omitempty"`
	Items             []MissingItem     `json:"items,omitempty"`
	Stats             *MissingStats     `json:"stats,omitempty"`
	Achievements      []string          `json:"achievements,omitempty"`
	PvPRank           *MissingThreshold `json:"pvp_rank,omitempty"`
	GuildLevel        *MissingThreshold `json:"guild_level,omitempty"`
	Playtime          *MissingThreshold `json:"playtime,omitempty"`
}

// IsEmpty reports whether nothing is missing
func (m *MissingRequirements) IsEmpty() bool {
	return m == nil || m.Count() == 0
}

// Count returns the number of unmet entries
func (m *MissingRequirements) Count() int {
	if m == nil {
		return 0
	}
	n := len(m.Dungeons) + len(m.Quests) + len(m.Items) + len(m.Achievements)
	for _, set := range []bool{
		m.NoAdvancementPath,
		m.Level != nil,
		m.Stats != nil,
		m.PvPRank != nil,
		m.GuildLevel != nil,
		m.Playtime != nil,
	} {
		if set {
			n++
		}
	}
	return n
}
