package calendar

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "time"

    "github.com/google/uuid"
    "golang.org/x/oauth2"
    "golang.org/x/oauth2/google"

    "github.com/avillegasn/agenda-api/internal/model"
)

const googleAPIBase = "https://www.googleapis.com/calendar/v3"

// GoogleConfig carries the OAuth2 credentials and target calendar for
// the Google implementation.  Access uses a long-lived refresh token;
// access tokens are minted on demand so no interactive login ever
// happens at request time.
type GoogleConfig struct {
    ClientID     string
    ClientSecret string
    RefreshToken string
    CalendarID   string
}

// GoogleClient implements Provider against the Google Calendar REST API.
type GoogleClient struct {
    http       *http.Client
    calendarID string
}

// NewGoogleClient builds a client whose underlying HTTP transport
// refreshes access tokens automatically from the configured refresh
// token.
func NewGoogleClient(ctx context.Context, cfg GoogleConfig) *GoogleClient {
    conf := &oauth2.Config{
        ClientID:     cfg.ClientID,
        ClientSecret: cfg.ClientSecret,
        Endpoint:     google.Endpoint,
        Scopes:       []string{"https://www.googleapis.com/auth/calendar"},
    }
    return &GoogleClient{
        http:       conf.Client(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken}),
        calendarID: cfg.CalendarID,
    }
}

// QueryBusy asks the freeBusy endpoint for the busy intervals of the
// configured calendar between timeMin and timeMax.
func (g *GoogleClient) QueryBusy(ctx context.Context, timeMin, timeMax time.Time) ([]model.Interval, error) {
    reqBody := struct {
        TimeMin string `json:"timeMin"`
        TimeMax string `json:"timeMax"`
        Items   []struct {
            ID string `json:"id"`
        } `json:"items"`
    }{
        TimeMin: timeMin.Format(time.RFC3339),
        TimeMax: timeMax.Format(time.RFC3339),
        Items: []struct {
            ID string `json:"id"`
        }{{ID: g.calendarID}},
    }
    var resBody struct {
        Calendars map[string]struct {
            Busy []struct {
                Start string `json:"start"`
                End   string `json:"end"`
            } `json:"busy"`
        } `json:"calendars"`
    }
    if err := g.post(ctx, googleAPIBase+"/freeBusy", reqBody, &resBody); err != nil {
        return nil, fmt.Errorf("freebusy query: %w", err)
    }
    cal, ok := resBody.Calendars[g.calendarID]
    if !ok {
        return nil, fmt.Errorf("freebusy query: calendar %s missing from response", g.calendarID)
    }
    intervals := make([]model.Interval, 0, len(cal.Busy))
    for _, b := range cal.Busy {
        start, err := time.Parse(time.RFC3339, b.Start)
        if err != nil {
            return nil, fmt.Errorf("freebusy query: bad start %q: %w", b.Start, err)
        }
        end, err := time.Parse(time.RFC3339, b.End)
        if err != nil {
            return nil, fmt.Errorf("freebusy query: bad end %q: %w", b.End, err)
        }
        intervals = append(intervals, model.Interval{Start: start, End: end})
    }
    return intervals, nil
}

// InsertEvent creates an event on the configured calendar.  When a Meet
// link is requested the conference version flag is set so the API
// provisions one; the resulting hangout link is returned as the meeting
// link.
func (g *GoogleClient) InsertEvent(ctx context.Context, ev EventInput) (*EventRef, error) {
    type dateTime struct {
        DateTime string `json:"dateTime"`
        TimeZone string `json:"timeZone"`
    }
    type attendee struct {
        Email string `json:"email"`
    }
    reqBody := map[string]interface{}{
        "summary":     ev.Summary,
        "description": ev.Description,
        "start":       dateTime{DateTime: ev.Start.Format(time.RFC3339), TimeZone: ev.Timezone},
        "end":         dateTime{DateTime: ev.End.Format(time.RFC3339), TimeZone: ev.Timezone},
    }
    if len(ev.Attendees) > 0 {
        list := make([]attendee, 0, len(ev.Attendees))
        for _, a := range ev.Attendees {
            list = append(list, attendee{Email: a})
        }
        reqBody["attendees"] = list
    }
    if ev.Location != "" {
        reqBody["location"] = ev.Location
    }
    if ev.WithMeet {
        reqBody["conferenceData"] = map[string]interface{}{
            "createRequest": map[string]interface{}{
                "requestId": uuid.NewString(),
                "conferenceSolutionKey": map[string]string{
                    "type": "hangoutsMeet",
                },
            },
        }
    }
    endpoint := fmt.Sprintf("%s/calendars/%s/events?conferenceDataVersion=1", googleAPIBase, url.PathEscape(g.calendarID))
    var resBody struct {
        ID          string `json:"id"`
        HangoutLink string `json:"hangoutLink"`
    }
    if err := g.post(ctx, endpoint, reqBody, &resBody); err != nil {
        return nil, fmt.Errorf("event insert: %w", err)
    }
    return &EventRef{ID: resBody.ID, MeetingLink: resBody.HangoutLink}, nil
}

// post sends a JSON body and decodes a JSON response, surfacing
// non-2xx statuses as errors with a truncated body excerpt.
func (g *GoogleClient) post(ctx context.Context, endpoint string, in, out interface{}) error {
    payload, err := json.Marshal(in)
    if err != nil {
        return err
    }
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
    if err != nil {
        return err
    }
    req.Header.Set("Content-Type", "application/json")
    res, err := g.http.Do(req)
    if err != nil {
        return err
    }
    defer res.Body.Close()
    if res.StatusCode < 200 || res.StatusCode > 299 {
        excerpt, _ := io.ReadAll(io.LimitReader(res.Body, 512))
        return fmt.Errorf("status %d: %s", res.StatusCode, bytes.TrimSpace(excerpt))
    }
    return json.NewDecoder(res.Body).Decode(out)
}
