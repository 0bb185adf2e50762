package services

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Catalog holds the fixed lists of categories, universities and faculties.
type Catalog struct {
	categories   map[string][]string
	categorySet  map[string]struct{}
	universities []string
	faculties    []string
}

// NewCatalog builds a catalog. Category groups map a faculty (or "Dersler"
// for courses) to the names a question may be filed under.
func NewCatalog(categories map[string][]string, universities, faculties []string) *Catalog {
	set := make(map[string]struct{})
	for _, names := range categories {
		for _, name := range names {
			set[name] = struct{}{}
		}
	}

	return &Catalog{
		categories:   categories,
		categorySet:  set,
		universities: sortTurkish(universities),
		faculties:    sortTurkish(faculties),
	}
}

// DefaultCatalog returns the catalog served by the forum.
func DefaultCatalog() *Catalog {
	return NewCatalog(defaultCategories, defaultUniversities, defaultFaculties)
}

func sortTurkish(values []string) []string {
	sorted := append([]string(nil), values...)
	collate.New(language.Turkish).SortStrings(sorted)
	return sorted
}

func (c *Catalog) Categories() map[string][]string {
	return c.categories
}

func (c *Catalog) Universities() []string {
	return c.universities
}

func (c *Catalog) Faculties() []string {
	return c.faculties
}

// HasCategory reports whether name is a department or course in the catalog.
func (c *Catalog) HasCategory(name string) bool {
	_, ok := c.categorySet[name]
	return ok
}

var defaultCategories = map[string][]string{
	"Mühendislik Fakültesi": {
		"Bilgisayar Mühendisliği", "Makine Mühendisliği", "Elektrik Mühendisliği",
		"İnşaat Mühendisliği", "Endüstri Mühendisliği", "Kimya Mühendisliği",
		"Çevre Mühendisliği", "Jeoloji Mühendisliği",
	},
	"Tıp Fakültesi": {
		"Tıp", "Hemşirelik", "Odyoloji", "Fizyoterapi",
	},
	"Hukuk Fakültesi": {
		"Hukuk",
	},
	"İktisadi ve İdari Bilimler Fakültesi": {
		"İşletme", "İktisat", "Maliye", "Kamu Yönetimi", "Uluslararası İlişkiler",
	},
	"Fen Edebiyat Fakültesi": {
		"Matematik", "Fizik", "Kimya", "Biyoloji", "Tarih", "Coğrafya", "Türk Dili ve Edebiyatı",
	},
	"Eğitim Fakültesi": {
		"İlköğretim Öğretmenliği", "Okul Öncesi Öğretmenliği", "PDR", "Rehberlik",
	},
	"Mimarlık Fakültesi": {
		"Mimarlık", "İç Mimarlık", "Şehir ve Bölge Planlama",
	},
	"İletişim Fakültesi": {
		"Gazetecilik", "Halkla İlişkiler", "Radyo TV Sinema",
	},
	"Dersler": {
		"Matematik I", "Matematik II", "Fizik I", "Fizik II", "Kimya I", "Kimya II",
		"Diferansiyel Denklemler", "Lineer Cebir", "Olasılık ve İstatistik",
		"Programlama I", "Programlama II", "Veri Yapıları", "Algoritmalar",
		"Veritabanı Sistemleri", "İşletim Sistemleri", "Bilgisayar Ağları",
		"Yapay Zeka", "Makine Öğrenmesi", "Web Programlama",
		"Mobil Programlama", "Yazılım Mühendisliği", "Yazılım Testi",
		"Bilgisayar Grafiği", "Gömülü Sistemler",
	},
}

var defaultUniversities = []string{
	"Boğaziçi Üniversitesi", "İstanbul Teknik Üniversitesi", "İstanbul Üniversitesi",
	"Marmara Üniversitesi", "Yıldız Teknik Üniversitesi", "Galatasaray Üniversitesi",
	"Koç Üniversitesi", "Sabancı Üniversitesi", "Bahçeşehir Üniversitesi",
	"Hacettepe Üniversitesi", "Ankara Üniversitesi", "Orta Doğu Teknik Üniversitesi (ODTÜ)",
	"Gazi Üniversitesi", "Bilkent Üniversitesi", "TOBB Ekonomi ve Teknoloji Üniversitesi",
	"Ege Üniversitesi", "Dokuz Eylül Üniversitesi", "İzmir Yüksek Teknoloji Enstitüsü",
	"Çukurova Üniversitesi", "Akdeniz Üniversitesi", "Anadolu Üniversitesi",
	"Atatürk Üniversitesi", "Erciyes Üniversitesi", "Karadeniz Teknik Üniversitesi",
	"Selçuk Üniversitesi", "Ondokuz Mayıs Üniversitesi", "Uludağ Üniversitesi",
}

var defaultFaculties = []string{
	"Mühendislik Fakültesi", "Tıp Fakültesi", "Eğitim Fakültesi",
	"İktisadi ve İdari Bilimler Fakültesi", "Hukuk Fakültesi",
	"Fen Edebiyat Fakültesi", "Mimarlık Fakültesi", "Güzel Sanatlar Fakültesi",
	"İletişim Fakültesi", "Spor Bilimleri Fakültesi", "Ziraat Fakültesi",
	"Veteriner Fakültesi", "Diş Hekimliği Fakültesi", "Eczacılık Fakültesi",
	"Sağlık Bilimleri Fakültesi", "Meslek Yüksekokulu",
}
