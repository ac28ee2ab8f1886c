// Package locale holds user-facing labels and messages.
package locale

import (
	"fmt"
	"strings"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/assessment"
)

// Messages is one language's wording.
type Messages struct {
	Code string

	// Main menu buttons.
	ProblemSolving string
	LectureSummary string
	CodeReview     string
	VideoDiscovery string
	QA             string
	Courses        string

	// Course menu buttons.
	CourseGraph  string
	ExplainTopic string
	TakeTest     string

	// Navigation buttons.
	BackToMain    string
	BackToCourses string
	BackToCourse  string
	Finish        string
	Exit          string
	ExitTest      string

	// CourseButton formats a course list entry; the "(ID: n)" suffix is
	// parsed back on selection.
	CourseButton string

	ChooseAction        string
	ProblemIntro        string
	ProblemContinue     string
	ProblemFinished     string
	AskLecture          string
	SummaryHeader       string
	AskTask             string
	AskCode             string
	ReviewHeader        string
	AskVideoTopic       string
	VideosFound         string
	NoVideos            string
	VideoError          string
	AskQuestion         string
	NotFound            string
	ChooseCourse        string
	NoCourses           string
	ChooseCourseAction  string
	BackInCourse        string
	BackInCourseUnnamed string
	NoCourse            string
	NoTopics            string
	ChooseExplainTopic  string
	ChooseTestTopic     string
	UnknownTopic        string
	TopicQAIntro        string
	TopicQAContinue     string
	QuestionHeader      string
	TestFinishedPrompt  string
	TestAborted         string
	TestFailed          string
	TryAgainLater       string
	ProviderError       string
	StoreError          string
	InternalError       string
	GraphCaption        string
	UnknownCommand      string

	Report assessment.ReportText

	// ExitWords are extra lowercase words that end a conversation mode.
	ExitWords []string
}

// English is the default wording.
var English = Messages{
	Code: "en",

	ProblemSolving: "Problem Solving",
	LectureSummary: "Lecture Summary",
	CodeReview:     "Code Review",
	VideoDiscovery: "Video Discovery",
	QA:             "Q&A",
	Courses:        "Courses",

	CourseGraph:  "Course Graph",
	ExplainTopic: "Explain Topic",
	TakeTest:     "Take Test",

	BackToMain:    "Back to main menu",
	BackToCourses: "Back to courses",
	BackToCourse:  "Back to course",
	Finish:        "Finish",
	Exit:          "Exit",
	ExitTest:      "Exit test",

	CourseButton: "Course: %s (ID: %d)",

	ChooseAction:        "Choose an action:",
	ProblemIntro:        "Describe the problem you need to solve. I will ask leading questions to help you find the solution yourself.\n\nWhen you are done, type 'Finish' or press the button.",
	ProblemContinue:     "Keep answering the questions or type 'Finish' to stop.",
	ProblemFinished:     "Leaving problem solving mode. If you need help again, choose 'Problem Solving' in the menu.",
	AskLecture:          "Send the lecture text to summarize:",
	SummaryHeader:       "Summary:",
	AskTask:             "Send the assignment description:",
	AskCode:             "Now send your code:",
	ReviewHeader:        "Review result:",
	AskVideoTopic:       "Enter a topic to search videos for (for example: 'machine learning for beginners'):",
	VideosFound:         "Videos found for '%s':",
	NoVideos:            "Could not find videos on this topic.",
	VideoError:          "Something went wrong while searching for videos. Please try again later.",
	AskQuestion:         "Ask your question:",
	NotFound:            "Could not find an answer in the knowledge base.",
	ChooseCourse:        "Choose a course:",
	NoCourses:           "There are no courses yet.",
	ChooseCourseAction:  "Choose what to do with the course:",
	BackInCourse:        "You are back in the course menu: %s",
	BackInCourseUnnamed: "You are back in the course menu",
	NoCourse:            "Error: no course selected.",
	NoTopics:            "This course has no topics.",
	ChooseExplainTopic:  "Choose a topic to explain:",
	ChooseTestTopic:     "Choose a topic to be tested on:",
	UnknownTopic:        "Error: topic not found. Choose one of the buttons.",
	TopicQAIntro:        "You can ask questions about this topic. Press 'Exit' when you are done.",
	TopicQAContinue:     "Ask another question or press 'Exit'.",
	QuestionHeader:      "Question %d/%d:",
	TestFinishedPrompt:  "You can now ask questions about this topic. Press 'Exit' to finish.",
	TestAborted:         "Test stopped. No mark was saved.",
	TestFailed:          "Could not build a test for this topic. Please try again later.",
	TryAgainLater:       "The assistant is busy right now. Please try again later.",
	ProviderError:       "Sorry, the assistant could not process your request.",
	StoreError:          "Sorry, the course database is unavailable. Please try again later.",
	InternalError:       "Sorry, something went wrong. Returning to the main menu.",
	GraphCaption:        "Progress in %s",
	UnknownCommand:      "Please choose an action from the menu.",

	Report: assessment.DefaultReportText,

	ExitWords: []string{"finish", "exit", "end", "back", "/exit"},
}

// Russian mirrors English.
var Russian = Messages{
	Code: "ru",

	ProblemSolving: "Решение задач",
	LectureSummary: "Конспект лекции",
	CodeReview:     "Код-ревью",
	VideoDiscovery: "Подбор видео",
	QA:             "Ответы на вопросы",
	Courses:        "Прохождение курсов",

	CourseGraph:  "Граф курса",
	ExplainTopic: "Объяснить тему",
	TakeTest:     "Пройти тест",

	BackToMain:    "Назад в главное меню",
	BackToCourses: "Назад к курсам",
	BackToCourse:  "Назад к курсу",
	Finish:        "Завершить",
	Exit:          "Выход",
	ExitTest:      "Прервать тест",

	CourseButton: "Курс: %s (ID: %d)",

	ChooseAction:        "Выберите действие:",
	ProblemIntro:        "Опишите задачу, которую нужно решить. Я буду задавать наводящие вопросы, чтобы помочь вам найти решение самостоятельно.\n\nКогда закончите, напишите 'Завершить' или нажмите соответствующую кнопку.",
	ProblemContinue:     "Продолжайте отвечать на вопросы или напишите 'Завершить', чтобы закончить.",
	ProblemFinished:     "Завершаю режим решения задач. Если нужно будет снова помочь - просто выберите 'Решение задач' в меню.",
	AskLecture:          "Отправьте текст лекции для создания конспекта:",
	SummaryHeader:       "Краткий конспект:",
	AskTask:             "Отправьте описание задания:",
	AskCode:             "Теперь отправьте ваш код:",
	ReviewHeader:        "Результат ревью:",
	AskVideoTopic:       "Введите тему для поиска видео (например: 'машинное обучение для начинающих'):",
	VideosFound:         "Найденные видео по теме '%s':",
	NoVideos:            "Не удалось найти видео по данной теме.",
	VideoError:          "Произошла ошибка при поиске видео. Пожалуйста, попробуйте позже.",
	AskQuestion:         "Задайте ваш вопрос:",
	NotFound:            "Не удалось найти ответ в векторной базе данных.",
	ChooseCourse:        "Выберите курс:",
	NoCourses:           "Курсов пока нет.",
	ChooseCourseAction:  "Выберите действие с курсом:",
	BackInCourse:        "Вы вернулись в меню курса: %s",
	BackInCourseUnnamed: "Вы вернулись в меню курса",
	NoCourse:            "Ошибка: курс не выбран.",
	NoTopics:            "В этом курсе нет тем.",
	ChooseExplainTopic:  "Выберите тему для объяснения:",
	ChooseTestTopic:     "Выберите тему для тестирования:",
	UnknownTopic:        "Ошибка: тема не найдена. Выберите одну из кнопок.",
	TopicQAIntro:        "Вы можете задавать вопросы по этой теме. Нажмите 'Выход' для завершения.",
	TopicQAContinue:     "Можете задать еще вопрос или нажмите 'Выход'",
	QuestionHeader:      "Вопрос %d/%d:",
	TestFinishedPrompt:  "Теперь можно задать вопросы по теме. Нажмите 'Выход' для завершения тестирования.",
	TestAborted:         "Тест прерван. Оценка не сохранена.",
	TestFailed:          "Не удалось составить тест по этой теме. Попробуйте позже.",
	TryAgainLater:       "Сервис сейчас перегружен. Пожалуйста, попробуйте позже.",
	ProviderError:       "Извините, не удалось обработать запрос.",
	StoreError:          "Извините, база курсов недоступна. Пожалуйста, попробуйте позже.",
	InternalError:       "Извините, что-то пошло не так. Возвращаемся в главное меню.",
	GraphCaption:        "Прогресс по курсу %s",
	UnknownCommand:      "Пожалуйста, выберите действие в меню.",

	Report: assessment.ReportText{
		Header:        "Тест завершен!",
		Score:         "Результат: %d/%d (%d%%)",
		Details:       "Подробные ответы:",
		YourAnswer:    "Ваш ответ:",
		CorrectAnswer: "Правильный ответ:",
	},

	ExitWords: []string{"завершить", "закончить", "выход", "назад"},
}

// Lookup returns the messages for code, falling back to English.
func Lookup(code string) *Messages {
	switch strings.ToLower(code) {
	case "ru":
		return &Russian
	default:
		return &English
	}
}

// Codes lists supported locale codes.
var Codes = []string{"en", "ru"}

// FormatCourse renders a course list button.
func (m *Messages) FormatCourse(name string, id int64) string {
	return fmt.Sprintf(m.CourseButton, name, id)
}

// IsExit reports whether text is an exit word in any supported language.
func IsExit(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return false
	}
	for _, m := range []*Messages{&English, &Russian} {
		for _, w := range m.ExitWords {
			if t == w {
				return true
			}
		}
		for _, label := range []string{m.Finish, m.Exit, m.ExitTest} {
			if t == strings.ToLower(label) {
				return true
			}
		}
	}
	return false
}
