package config

// Built-in table data. These mirror the documented European monitoring
// tuning: source tiers and weights, severity phrase weights (critical 10,
// high 6, moderate 3, de-escalation -6, per-event cap 25), per-target
// baselines, and per-target fetch keywords. Every value can be overridden
// from the config file; the constants here are the reference tuning.

// DefaultSources returns the built-in source credibility tiers.
func DefaultSources() SourcesConfig {
	return SourcesConfig{Tiers: map[string]TierConfig{
		"premium": {
			Weight: 1.0,
			Sources: []string{
				"The New York Times", "The Washington Post", "Reuters",
				"Associated Press", "AP News", "BBC News", "The Guardian",
				"Financial Times", "Wall Street Journal", "The Economist",
				"Le Monde", "Der Spiegel", "Frankfurter Allgemeine",
			},
		},
		"think_tank": {
			Weight: 0.9,
			Sources: []string{
				"War on the Rocks", "ISW", "RUSI", "IISS",
				"Carnegie", "Chatham House", "CSIS", "RAND",
				"Atlantic Council", "Brookings", "Council on Foreign Relations",
			},
		},
		"regional": {
			Weight: 0.85,
			Sources: []string{
				"Ukrainska Pravda", "Kyiv Independent", "Kyiv Post",
				"Meduza", "Moscow Times", "TASS", "Interfax",
				"Gazeta Wyborcza", "TVN24", "Polsat News",
				"Arctic Today", "Sermitsiaq", "KNR Greenland",
				"DR (Denmark)", "Berlingske", "Politiken",
				"France 24", "RFI", "Deutsche Welle",
				"Euronews", "EUobserver", "Politico Europe",
				"The Barents Observer", "High North News",
			},
		},
		"standard": {
			Weight: 0.6,
			Sources: []string{
				"CNN", "MSNBC", "Fox News", "NBC News", "CBS News",
				"ABC News", "Bloomberg", "CNBC", "Sky News",
				"Al Jazeera", "RT",
			},
		},
		"aggregator": {
			Weight:  0.4,
			Sources: []string{"GDELT"},
		},
		"social": {
			Weight:  0.3,
			Sources: []string{"Reddit", "r/"},
		},
	}}
}

// DefaultSeverity returns the built-in severity lexicon.
func DefaultSeverity() SeverityConfig {
	return SeverityConfig{
		Cap:           25.0,
		DefaultWeight: 1.0,
		Categories: []SeverityCategoryConfig{
			{
				Name:   "critical",
				Weight: 10.0,
				Phrases: []string{
					"nuclear strike", "nuclear attack", "nuclear threat", "nuclear escalation",
					"full-scale war", "declaration of war", "state of war",
					"mobilization order", "reserves called up", "troops deployed",
					"troops cross border", "article 5", "nato article 5", "collective defense",
					"tactical nuclear", "nuclear warhead",
				},
			},
			{
				Name:   "high",
				Weight: 6.0,
				Phrases: []string{
					"imminent strike", "imminent attack", "preparing to strike",
					"military buildup", "forces gathering", "will strike",
					"vowed to attack", "threatened to strike",
					"invasion", "incursion", "annexation",
					"cruise missile", "ballistic missile", "hypersonic", "missile",
					"drone swarm", "airspace violation", "sovereignty violation",
					"territorial violation", "border breach",
					"airstrike", "shelling", "artillery", "drone strike", "sabotage",
					"airspace closed", "no-fly zone",
				},
			},
			{
				Name:   "moderate",
				Weight: 3.0,
				Phrases: []string{
					"threatens", "warned", "tensions", "escalation",
					"conflict", "crisis", "provocation", "sanctions",
					"troop movement", "military exercise", "naval exercise",
					"reconnaissance", "surveillance", "posturing",
					"cyber attack", "hybrid warfare", "disinformation campaign",
					"flight cancellations", "cancelled flights", "suspended flights",
					"grounded flights", "airline suspends", "travel advisory",
					"do not travel", "avoid all travel",
				},
			},
		},
		Deescalation: DeescalationConfig{
			Weight: -6.0,
			Phrases: []string{
				"ceasefire", "cease-fire", "truce", "peace talks", "peace agreement",
				"diplomatic solution", "negotiations", "de-escalation", "de-escalate",
				"tensions ease", "tensions cool", "tensions subside",
				"defused", "ruled out", "backs down",
				"restraint", "diplomatic efforts",
				"peace summit", "peace plan", "peace deal",
				"withdrawal", "pullback", "disengagement", "humanitarian corridor",
				"prisoner exchange", "grain deal", "diplomatic channel",
			},
		},
	}
}

// DefaultBaselines returns the built-in per-target baselines. Offsets fold
// the historical base score (25) into the structural adjustment so a quiet
// window lands on the target's standing-risk level.
func DefaultBaselines() map[string]BaselineConfig {
	return map[string]BaselineConfig{
		"greenland": {Min: 10, Max: 95, Offset: 28}, // sovereignty rhetoric, Arctic tension
		"ukraine":   {Min: 10, Max: 95, Offset: 40}, // active war zone
		"russia":    {Min: 10, Max: 95, Offset: 37}, // active aggressor, nuclear rhetoric
		"poland":    {Min: 10, Max: 95, Offset: 30}, // NATO frontline, drone incursions
	}
}

// DefaultTargets returns the built-in per-target fetch keywords.
func DefaultTargets() map[string]TargetConfig {
	return map[string]TargetConfig{
		"greenland": {
			Keywords: []string{
				"greenland", "grønland", "kalaallit nunaat",
				"denmark greenland", "greenland sovereignty",
				"greenland nato", "greenland arctic", "thule air base",
				"pituffik space base", "nuuk", "greenland independence",
				"greenland rare earth",
			},
			RedditKeywords: []string{
				"Greenland", "Denmark", "Arctic", "sovereignty", "NATO",
				"Thule", "Pituffik", "Nuuk", "rare earth",
			},
			Subreddits: []string{"Greenland", "europe", "geopolitics", "worldnews", "Denmark"},
		},
		"ukraine": {
			Keywords: []string{
				"ukraine", "ukrainian", "kyiv", "zelensky",
				"donbas", "donetsk", "luhansk", "zaporizhzhia",
				"kherson", "crimea", "ukraine war", "ukraine offensive",
				"ukraine ceasefire", "ukraine nato", "ukraine aid",
			},
			RedditKeywords: []string{
				"Ukraine", "Kyiv", "Zelensky", "frontline", "war",
				"Donbas", "offensive", "missile", "drone", "ceasefire",
			},
			Subreddits: []string{"ukraine", "UkrainianConflict", "europe", "geopolitics", "worldnews"},
		},
		"russia": {
			Keywords: []string{
				"russia", "russian", "moscow", "kremlin", "putin",
				"russian military", "russia nato", "russia nuclear",
				"russia sanctions", "russia mobilization",
				"kaliningrad", "russia baltic", "russia airspace",
			},
			RedditKeywords: []string{
				"Russia", "Putin", "Kremlin", "Moscow", "sanctions",
				"nuclear", "NATO", "mobilization", "Baltic",
			},
			Subreddits: []string{"russia", "europe", "geopolitics", "worldnews"},
		},
		"poland": {
			Keywords: []string{
				"poland", "polish", "warsaw", "poland nato", "poland military",
				"poland border", "poland russia", "poland drone",
				"poland airspace", "poland belarus", "poland missile",
				"suwalki gap", "poland patriot", "poland defense",
			},
			RedditKeywords: []string{
				"Poland", "Warsaw", "NATO", "border", "Russia",
				"drone", "airspace", "Belarus", "Suwalki", "missile",
			},
			Subreddits: []string{"poland", "Polska", "europe", "geopolitics", "worldnews"},
		},
	}
}

// DefaultRSSFeeds returns the built-in RSS feed list.
func DefaultRSSFeeds() []RSSFeedConfig {
	return []RSSFeedConfig{
		{
			Name:     "Kyiv Independent",
			URL:      "https://kyivindependent.com/feed",
			Targets:  []string{"ukraine", "russia"},
			MaxItems: 20,
		},
		{
			Name:     "Meduza",
			URL:      "https://meduza.io/rss/en/all",
			Targets:  []string{"russia", "ukraine"},
			MaxItems: 20,
		},
		{
			Name:     "ISW",
			URL:      "https://www.understandingwar.org/rss.xml",
			Targets:  []string{"ukraine", "russia"},
			MaxItems: 10,
		},
		{
			Name:     "Arctic Today",
			URL:      "https://www.arctictoday.com/feed/",
			Targets:  []string{"greenland"},
			MaxItems: 15,
		},
	}
}
