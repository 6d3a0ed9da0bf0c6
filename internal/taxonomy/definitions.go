package taxonomy

import "DailyBrief/internal/domain"

// Section keys referenced directly by other packages.
const (
	News             domain.SectionKey = "news"
	Tech             domain.SectionKey = "tech"
	CyprusFootball   domain.SectionKey = "cyprus_football"
	GreekSuperLeague domain.SectionKey = "greek_super_league"
	Euroleague       domain.SectionKey = "euroleague"
	EuropeanFootball domain.SectionKey = "european_football"
	NationalFootball domain.SectionKey = "national_football"
	MatchCenter      domain.SectionKey = "match_center"
)

func sub(key, en, el string) SubsectionDefinition {
	return SubsectionDefinition{Key: key, Labels: map[Language]string{English: en, Greek: el}}
}

var bucketDefaults = map[domain.Bucket]domain.Route{
	domain.BucketNews:   {Section: News, Subsection: "world"},
	domain.BucketTech:   {Section: Tech, Subsection: "other"},
	domain.BucketSports: {Section: CyprusFootball, Subsection: "cyprus_league_general"},
}

var sectionDefinitions = []SectionDefinition{
	{
		Key:               News,
		TitleKey:          "news",
		FallbackCover:     "/news.png",
		DefaultSubsection: "world",
		Bucket:            domain.BucketNews,
		Subsections: []SubsectionDefinition{
			sub("cyprus", "Cyprus", "Κύπρος"),
			sub("greece", "Greece", "Ελλάδα"),
			sub("world", "Worldwide", "Κόσμος"),
		},
	},
	{
		Key:               Tech,
		TitleKey:          "tech",
		FallbackCover:     "/tech.png",
		DefaultSubsection: "other",
		Bucket:            domain.BucketTech,
		Subsections: []SubsectionDefinition{
			sub("cs", "Computer Science", "Επιστήμη Υπολογιστών"),
			sub("programming", "Programming", "Προγραμματισμός"),
			sub("ai_llm", "AI/LLMs", "AI/LLM"),
			sub("other", "Engineering", "Μηχανική"),
		},
	},
	{
		Key:               CyprusFootball,
		TitleKey:          "cyprusFootball",
		FallbackCover:     "/news.png",
		DefaultSubsection: "cyprus_league_general",
		Bucket:            domain.BucketSports,
		Subsections: []SubsectionDefinition{
			sub("cyprus_league_general", "Cyprus League (General)", "Πρωτάθλημα Κύπρου (Γενικά)"),
			sub("apollon_limassol", "Apollon Limassol", "Απόλλων Λεμεσού"),
			sub("ael_limassol", "AEL Limassol", "ΑΕΛ Λεμεσού"),
			sub("apoel_nicosia", "APOEL Nicosia", "ΑΠΟΕΛ Λευκωσίας"),
			sub("omonoia_nicosia", "Omonoia Nicosia", "Ομόνοια Λευκωσίας"),
			sub("anorthosis_famagusta", "Anorthosis Famagusta", "Ανόρθωση Αμμοχώστου"),
			sub("aek_larnaka", "AEK Larnaka", "ΑΕΚ Λάρνακας"),
		},
	},
	{
		Key:               GreekSuperLeague,
		TitleKey:          "greekSuperLeague",
		FallbackCover:     "/news.png",
		DefaultSubsection: "greek_super_league_general",
		Bucket:            domain.BucketSports,
		Subsections: []SubsectionDefinition{
			sub("greek_super_league_general", "Greek Super League (General)", "Ελληνική Super League (Γενικά)"),
			sub("olympiacos_piraeus", "Olympiacos Piraeus", "Ολυμπιακός Πειραιώς"),
			sub("aek_athens", "AEK Athens", "ΑΕΚ Αθήνας"),
			sub("panathinaikos_fc", "Panathinaikos FC", "Παναθηναϊκός"),
			sub("paok_fc", "PAOK FC", "ΠΑΟΚ"),
			sub("aris_fc", "Aris FC", "Άρης"),
		},
	},
	{
		Key:               Euroleague,
		TitleKey:          "euroleague",
		FallbackCover:     "/tech.png",
		DefaultSubsection: "euroleague_general",
		Bucket:            domain.BucketSports,
		Subsections: []SubsectionDefinition{
			sub("euroleague_general", "EuroLeague (General)", "EuroLeague (Γενικά)"),
			sub("anadolu_efes", "Anadolu Efes", "Αναντολού Εφές"),
			sub("as_monaco", "AS Monaco", "AS Μονακό"),
			sub("baskonia", "Baskonia", "Μπασκόνια"),
			sub("crvena_zvezda", "Crvena Zvezda", "Ερυθρός Αστέρας"),
			sub("fenerbahce", "Fenerbahce", "Φενέρμπαχτσε"),
			sub("fc_barcelona", "FC Barcelona", "Μπαρτσελόνα"),
			sub("bayern_munich", "Bayern Munich", "Μπάγερν Μονάχου"),
			sub("maccabi_tel_aviv", "Maccabi Tel Aviv", "Μακάμπι Τελ Αβίβ"),
			sub("olimpia_milano", "Olimpia Milano", "Ολίμπια Μιλάνο"),
			sub("olympiacos", "Olympiacos", "Ολυμπιακός"),
			sub("panathinaikos", "Panathinaikos", "Παναθηναϊκός"),
			sub("paris_basketball", "Paris Basketball", "Paris Basketball"),
			sub("partizan", "Partizan", "Παρτιζάν"),
			sub("real_madrid", "Real Madrid", "Ρεάλ Μαδρίτης"),
			sub("valencia_basket", "Valencia Basket", "Βαλένθια"),
			sub("virtus_bologna", "Virtus Bologna", "Βίρτους Μπολόνια"),
			sub("zalgiris", "Zalgiris Kaunas", "Ζαλγκίρις Κάουνας"),
			sub("asvel", "ASVEL Villeurbanne", "ASVEL Βιλερμπάν"),
			sub("hapoel_tel_aviv", "Hapoel Tel Aviv", "Χάποελ Τελ Αβίβ"),
			sub("dubai_bc", "Dubai BC", "Dubai BC"),
		},
	},
	{
		Key:               EuropeanFootball,
		TitleKey:          "europeanFootball",
		FallbackCover:     "/news.png",
		DefaultSubsection: "champions_league",
		Bucket:            domain.BucketSports,
		Subsections: []SubsectionDefinition{
			sub("champions_league", "UEFA Champions League", "UEFA Champions League"),
			sub("europa_league", "UEFA Europa League", "UEFA Europa League"),
			sub("conference_league", "UEFA Conference League", "UEFA Conference League"),
			sub("premier_league", "Premier League", "Premier League"),
			sub("la_liga", "La Liga", "La Liga"),
			sub("serie_a", "Serie A", "Serie A"),
			sub("ligue_1", "Ligue 1", "Ligue 1"),
			sub("bundesliga", "Bundesliga", "Bundesliga"),
		},
	},
	{
		Key:               NationalFootball,
		TitleKey:          "nationalFootball",
		FallbackCover:     "/news.png",
		DefaultSubsection: "euro",
		Bucket:            domain.BucketSports,
		Subsections: []SubsectionDefinition{
			sub("euro", "UEFA Euro", "UEFA Euro"),
			sub("world_cup", "FIFA World Cup", "FIFA World Cup"),
			sub("nations_league", "UEFA Nations League", "UEFA Nations League"),
			sub("copa_africa", "Africa Cup of Nations", "Κύπελλο Εθνών Αφρικής"),
			sub("copa_america", "Copa America", "Copa America"),
		},
	},
	{
		Key:               MatchCenter,
		TitleKey:          "matchCenter",
		FallbackCover:     "/tech.png",
		DefaultSubsection: "football_cyprus_league",
		Subsections: []SubsectionDefinition{
			sub("football_cyprus_league", "Football · Cyprus League", "Ποδόσφαιρο · Κυπριακό Πρωτάθλημα"),
			sub("football_greek_super_league", "Football · Greek Super League", "Ποδόσφαιρο · Ελληνική Super League"),
			sub("football_champions_league", "Football · Champions League", "Ποδόσφαιρο · Champions League"),
			sub("football_europa_league", "Football · Europa League", "Ποδόσφαιρο · Europa League"),
			sub("football_conference_league", "Football · Conference League", "Ποδόσφαιρο · Conference League"),
			sub("football_premier_league", "Football · Premier League", "Ποδόσφαιρο · Premier League"),
			sub("football_bundesliga", "Football · Bundesliga", "Ποδόσφαιρο · Bundesliga"),
			sub("football_serie_a", "Football · Serie A", "Ποδόσφαιρο · Serie A"),
			sub("football_ligue_1", "Football · Ligue 1", "Ποδόσφαιρο · Ligue 1"),
			sub("football_la_liga", "Football · La Liga", "Ποδόσφαιρο · La Liga"),
			sub("basketball_euroleague", "Basketball · EuroLeague", "Μπάσκετ · EuroLeague"),
			sub("basketball_greek_league", "Basketball · Greek Basketball League", "Μπάσκετ · Ελληνική Basket League"),
			sub("national_euro", "National Teams · UEFA Euro", "Εθνικές Ομάδες · UEFA Euro"),
			sub("national_world_cup", "National Teams · FIFA World Cup", "Εθνικές Ομάδες · FIFA World Cup"),
			sub("national_nations_league", "National Teams · Nations League", "Εθνικές Ομάδες · Nations League"),
		},
	},
}
