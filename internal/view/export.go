package view

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/JoaquinMayer/youtube-channel-search/internal/youtube"
)

const channelURLPrefix = "https://youtube.com/channel/"

// csvHeader is the fixed export column set; order is part of the contract.
var csvHeader = []string{
	"id",
	"title",
	"description",
	"url",
	"subscribers",
	"videos",
	"views",
	"last_video_date",
	"last_video_id",
	"last_video_title",
	"visited",
}

// WriteCSV writes the derived view as CSV. encoding/csv doubles embedded
// quotes per RFC 4180, which is exactly the escaping the export format asks
// for.
func WriteCSV(w io.Writer, records []youtube.Channel, visited map[string]struct{}) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, record := range records {
		lastVideoDate := ""
		if record.LastVideoDate != nil {
			lastVideoDate = record.LastVideoDate.UTC().Format(time.RFC3339)
		}

		_, isVisited := visited[record.ID]

		row := []string{
			record.ID,
			record.Title,
			record.Description,
			channelURLPrefix + record.ID,
			strconv.FormatInt(record.SubscriberCount, 10),
			strconv.FormatInt(record.VideoCount, 10),
			strconv.FormatInt(record.ViewCount, 10),
			lastVideoDate,
			record.LastVideoID,
			record.LastVideoTitle,
			strconv.FormatBool(isVisited),
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}
