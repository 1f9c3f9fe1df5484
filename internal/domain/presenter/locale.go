package presenter

import (
	"strings"

	"golang.org/x/text/language"
)

// Locale selects the language of labels and notices.
type Locale string

const (
	English Locale = "en"
	Chinese Locale = "zh"
)

var (
	supportedTags    = []language.Tag{language.English, language.Chinese}
	supportedLocales = []Locale{English, Chinese}
	localeMatcher    = language.NewMatcher(supportedTags)
)

// ParseLocale returns the Locale named by s ("en", "zh", or any tag whose
// base language is one of them).
func ParseLocale(s string) (Locale, bool) {
	tag, err := language.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	for _, l := range supportedLocales {
		if base.String() == string(l) {
			return l, true
		}
	}
	return "", false
}

// MatchLocale picks the best supported locale for an Accept-Language header
// value, falling back when nothing matches.
func MatchLocale(acceptLanguage string, fallback Locale) Locale {
	if strings.TrimSpace(acceptLanguage) == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := localeMatcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	return supportedLocales[idx]
}

type labels struct {
	regular         string
	transfer        string
	rank            string
	weightedAverage string
	yearOne         string
	yearTwo         string
	transferNote    string
}

var catalog = map[Locale]labels{
	English: {
		regular:         "Regular student",
		transfer:        "Transfer student",
		rank:            "Class rank",
		weightedAverage: "Weighted average",
		yearOne:         "Year one",
		yearTwo:         "Year two",
		transferNote:    "Transfer student: only the year-two score counts toward the ranking.",
	},
	Chinese: {
		regular:         "完整学生",
		transfer:        "转入学生",
		rank:            "班级排名",
		weightedAverage: "加权平均分",
		yearOne:         "大一成绩",
		yearTwo:         "大二成绩",
		transferNote:    "该学生为转入学生，只有大二成绩参与排名计算",
	},
}

var noticeCatalog = map[Locale]map[Code]string{
	English: {
		CodeEmpty:                 "Please enter a student ID.",
		CodeTooShort:              "The student ID is too short; enter the full ID.",
		CodeTooLong:               "The student ID is too long; check the digits you entered.",
		CodeBadFormat:             "The student ID may contain digits only.",
		CodeNotFound:              "No grade record was found for this student ID; please check it.",
		CodeDatasetUnavailable:    "Grade data failed to load; refresh the page to try again.",
		CodeBackgroundUnavailable: "Background image failed to load: %s",
		CodeBackgroundBusy:        "A background change is already in progress.",
		CodeBackgroundUnknown:     "That background does not exist.",
		CodeInternal:              "Something went wrong during the lookup; please try again.",
	},
	Chinese: {
		CodeEmpty:                 "请输入学号",
		CodeTooShort:              "学号长度不正确，请输入完整的学号",
		CodeTooLong:               "学号长度不正确，请检查输入的学号",
		CodeBadFormat:             "学号格式不正确，只能包含数字",
		CodeNotFound:              "未找到该学号的成绩记录，请检查学号是否正确",
		CodeDatasetUnavailable:    "数据加载失败，请刷新页面重试",
		CodeBackgroundUnavailable: "背景图片加载失败: %s",
		CodeBackgroundBusy:        "背景正在切换，请稍候",
		CodeBackgroundUnknown:     "该背景不存在",
		CodeInternal:              "查询过程中发生错误，请重试",
	},
}
