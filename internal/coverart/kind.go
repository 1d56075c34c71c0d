package coverart

// Kind identifies which collection an item belongs to. Each kind has its own
// authoritative catalog, query shaping and locale labels.
type Kind string

const (
	KindBook     Kind = "book"
	KindMovie    Kind = "movie"
	KindGame     Kind = "game"
	KindPurchase Kind = "purchase"
)

// AllKinds returns every collection kind in audit order.
func AllKinds() []Kind {
	return []Kind{KindBook, KindMovie, KindGame, KindPurchase}
}

// Valid reports whether k is a known collection kind.
func (k Kind) Valid() bool {
	switch k {
	case KindBook, KindMovie, KindGame, KindPurchase:
		return true
	}
	return false
}

// localePrefixes lists the leading labels users type in front of titles,
// per kind. Matching is case-insensitive.
var localePrefixes = map[Kind][]string{
	KindBook:     {"book ", "книга "},
	KindMovie:    {"movie ", "film ", "фильм "},
	KindGame:     {"game ", "игра "},
	KindPurchase: {"purchase ", "покупка "},
}

// kindSuffix returns the English search suffix appended to free-text queries.
func kindSuffix(k Kind) string {
	switch k {
	case KindBook:
		return "book cover"
	case KindMovie:
		return "movie poster"
	case KindGame:
		return "game cover"
	default:
		return "product"
	}
}

// localizedSuffix returns the Russian alternative phrase used by the
// custom-search OR query.
func localizedSuffix(k Kind) string {
	switch k {
	case KindBook:
		return "обложка книги"
	case KindMovie:
		return "постер фильма"
	case KindGame:
		return "обложка игры"
	default:
		return "товар"
	}
}

// titleVariants returns encyclopedia page title candidates for a normalized
// title, bare title first, then kind-qualified disambiguations.
func titleVariants(k Kind, title string) []string {
	switch k {
	case KindBook:
		return []string{title, title + " (book)", title + " (novel)"}
	case KindMovie:
		return []string{title, title + " (film)"}
	case KindGame:
		return []string{title, title + " (video game)"}
	default:
		return []string{title}
	}
}
