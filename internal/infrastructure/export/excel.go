// Package export は面接記録一覧を xlsx として書き出す。
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sngm3741/interview-desk/api/internal/interview/domain"
	"github.com/xuri/excelize/v2"
)

const (
	listSheet    = "면접 목록"
	answersSheet = "답변"
)

var listHeaders = []string{"이름", "지원 포지션", "매장", "면접일", "면접관", "면접 유형", "스시 경력", "답변 수", "AI 요약", "등록일"}

// WriteRecords writes records as a two-sheet workbook: one row per record,
// and one row per answered question.
func WriteRecords(w io.Writer, q *domain.Questionnaire, records []domain.InterviewRecord, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", listSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(answersSheet); err != nil {
		return fmt.Errorf("create answers sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeListSheet(f, headerStyle, q, records, loc); err != nil {
		return fmt.Errorf("write list sheet: %w", err)
	}
	if err := writeAnswersSheet(f, headerStyle, q, records); err != nil {
		return fmt.Errorf("write answers sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeListSheet(f *excelize.File, headerStyle int, q *domain.Questionnaire, records []domain.InterviewRecord, loc *time.Location) error {
	if err := writeRow(f, listSheet, 1, toCells(listHeaders)); err != nil {
		return err
	}
	if err := f.SetCellStyle(listSheet, "A1", "J1", headerStyle); err != nil {
		return err
	}
	_ = f.SetColWidth(listSheet, "A", "A", 16)
	_ = f.SetColWidth(listSheet, "B", "E", 14)
	_ = f.SetColWidth(listSheet, "J", "J", 18)

	for i, record := range records {
		info := record.BasicInfo
		sushi := "없음"
		if info.HasSushiExperience {
			sushi = "있음"
		}
		summary := ""
		if strings.TrimSpace(record.AISummary) != "" {
			summary = "완료"
		}
		created := ""
		if !record.CreatedAt.IsZero() {
			created = record.CreatedAt.In(loc).Format("2006-01-02 15:04")
		}
		row := []interface{}{
			info.CandidateName,
			info.Position,
			info.Store,
			info.InterviewDate,
			info.InterviewerName,
			interviewTypeLabel(info.InterviewType),
			sushi,
			len(q.AnsweredItems(record.Answers)),
			summary,
			created,
		}
		if err := writeRow(f, listSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeAnswersSheet(f *excelize.File, headerStyle int, q *domain.Questionnaire, records []domain.InterviewRecord) error {
	if err := writeRow(f, answersSheet, 1, toCells([]string{"이름", "면접일", "질문", "답변"})); err != nil {
		return err
	}
	if err := f.SetCellStyle(answersSheet, "A1", "D1", headerStyle); err != nil {
		return err
	}
	_ = f.SetColWidth(answersSheet, "C", "C", 40)
	_ = f.SetColWidth(answersSheet, "D", "D", 60)

	row := 2
	for _, record := range records {
		for _, item := range q.AnsweredItems(record.Answers) {
			cells := []interface{}{record.BasicInfo.CandidateName, record.BasicInfo.InterviewDate, item.Question, item.Answer}
			if err := writeRow(f, answersSheet, row, cells); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func interviewTypeLabel(t domain.InterviewType) string {
	if t == domain.InterviewTypeDepth {
		return "심층"
	}
	return "일반"
}
