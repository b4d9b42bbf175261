package scoring

// Term lists used by the tokenizer. Entries are already in normalised form,
// i.e. after alias resolution.

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

var programmingLanguages = set(
	"python", "javascript", "typescript", "java", "csharp", "cpp", "c",
	"go", "rust", "php", "ruby", "swift", "kotlin", "scala", "r",
	"matlab", "perl", "shell", "bash", "powershell", "sql",
)

var frameworksLibraries = set(
	"react", "angular", "vue", "nodejs", "express", "nextjs",
	"django", "flask", "fastapi", "spring", "laravel", "dotnet", "jquery",
	"bootstrap", "tailwind", "redux", "numpy", "pandas", "scipy",
	"scikit", "tensorflow", "pytorch", "keras", "gin", "rails",
)

var databases = set(
	"mysql", "postgresql", "mongodb", "sqlite", "redis", "oracle",
	"dynamodb", "cassandra", "elasticsearch", "mariadb",
)

var cloudTools = set(
	"aws", "azure", "gcp", "docker", "kubernetes", "jenkins",
	"git", "github", "gitlab", "bitbucket", "vercel", "netlify",
	"heroku", "firebase", "terraform", "ansible", "linux",
)

// experienceTerms are verbs that signal hands-on work in a CV or posting.
var experienceTerms = set(
	"built", "designed", "developed", "implemented", "deployed", "maintained",
	"led", "managed", "architected", "mentored", "optimised", "optimized",
	"automated", "migrated", "shipped",
)

var jobTerms = set(
	"developer", "engineer", "scientist", "analyst", "manager",
	"senior", "junior", "lead", "full", "stack", "frontend", "backend",
	"fullstack", "web", "mobile", "data", "machine", "learning",
	"artificial", "intelligence", "software", "computer", "science",
	"microservices", "api", "apis", "rest", "cloud", "devops", "security",
)

// stopWords are dropped in every token mode. The second block is recruitment
// filler that appears in almost every posting.
var stopWords = set(
	"a", "an", "and", "are", "as", "at", "be", "been", "but", "by", "can",
	"for", "from", "has", "have", "he", "her", "his", "i", "in", "into", "is",
	"it", "its", "me", "my", "of", "on", "or", "our", "she", "so", "than",
	"that", "the", "their", "them", "they", "this", "to", "was", "we", "were",
	"will", "with", "you", "your", "who", "which", "what", "how", "all",
	"also", "more", "about", "such", "each", "any", "etc", "e.g", "i.e",

	"experience", "years", "year", "required", "preferred", "knowledge",
	"skills", "looking", "needed", "position", "role", "company",
	"team", "work", "working", "must", "essential", "join",
	"technologies", "startup", "environment", "modern", "development",
)

var aliases = map[string]string{
	"js":         "javascript",
	"ts":         "typescript",
	"node":       "nodejs",
	"node.js":    "nodejs",
	"next":       "nextjs",
	"next.js":    "nextjs",
	"react.js":   "react",
	"reactjs":    "react",
	"vue.js":     "vue",
	"vuejs":      "vue",
	"express.js": "express",
	"c++":        "cpp",
	"c#":         "csharp",
	".net":       "dotnet",
	"golang":     "go",
	"k8s":        "kubernetes",
	"postgres":   "postgresql",
	"mongo":      "mongodb",
	"sklearn":    "scikit",
}

// Repetition weights applied in focused mode
const (
	technicalWeight  = 3
	experienceWeight = 2
	jobTermWeight    = 1
)

func isTechnical(term string) bool {
	for _, s := range []map[string]struct{}{programmingLanguages, frameworksLibraries, databases, cloudTools} {
		if _, ok := s[term]; ok {
			return true
		}
	}
	return false
}

// lexiconWeight returns how many times a term is emitted in focused mode;
// zero means the term is dropped.
func lexiconWeight(term string) int {
	if isTechnical(term) {
		return technicalWeight
	}
	if _, ok := experienceTerms[term]; ok {
		return experienceWeight
	}
	if _, ok := jobTerms[term]; ok {
		return jobTermWeight
	}
	return 0
}
