package service

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ErrExportGenerateFail 生成导出文件失败
var ErrExportGenerateFail = errors.New("生成导出文件失败")

// cell 列号与行号 → 单元格名（列号从 1 开始）
func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// newWorkbook 创建只含一个指定名称工作表的工作簿
func newWorkbook(sheet string) *excelize.File {
	f := excelize.NewFile()
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	if sheet != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}
	return f
}

func headerStyle(f *excelize.File) int {
	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	return style
}

func wrapStyle(f *excelize.File) int {
	style, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	return style
}

// writeWorkbook 写出到 buffer 并关闭文件
func writeWorkbook(f *excelize.File) (*bytes.Buffer, error) {
	defer f.Close()
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportGenerateFail, err)
	}
	return buf, nil
}
