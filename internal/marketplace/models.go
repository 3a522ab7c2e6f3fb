package marketplace

// countResponse wraps the count endpoints' payload.
type countResponse struct {
	Data int `json:"data"`
}

type feedbackListResponse struct {
	Data *feedbackListData `json:"data"`
}

type feedbackListData struct {
	Feedbacks []Feedback `json:"feedbacks"`
}

type questionListResponse struct {
	Data *questionListData `json:"data"`
}

type questionListData struct {
	Questions []Question `json:"questions"`
}

// Feedback is one unanswered review as the marketplace returns it.
type Feedback struct {
	ID               string         `json:"id"`
	UserName         string         `json:"userName"`
	Pros             string         `json:"pros"`
	Cons             string         `json:"cons"`
	Text             string         `json:"text"`
	ProductValuation int            `json:"productValuation"`
	CreatedDate      string         `json:"createdDate"`
	ProductDetails   ProductDetails `json:"productDetails"`
	PhotoLinks       []PhotoLink    `json:"photoLinks"`
	Video            *string        `json:"video"`
	SubjectName      string         `json:"subjectName"`
}

// Question is one unanswered question as the marketplace returns it.
type Question struct {
	ID             string         `json:"id"`
	UserName       string         `json:"userName"`
	Text           string         `json:"text"`
	CreatedDate    string         `json:"createdDate"`
	ProductDetails ProductDetails `json:"productDetails"`
}

type ProductDetails struct {
	NmID        int64  `json:"nmId"`
	ProductName string `json:"productName"`
}

type PhotoLink struct {
	FullSize string `json:"fullSize"`
	MiniSize string `json:"miniSize"`
}

// cardsRequest is the body of the card-batch endpoint.
type cardsRequest struct {
	Settings cardsSettings `json:"settings"`
	NmIDs    []int64       `json:"nmIDs"`
}

type cardsSettings struct {
	Filter cardsFilter `json:"filter"`
	Cursor cardsCursor `json:"cursor"`
}

type cardsFilter struct {
	WithPhoto int `json:"withPhoto"`
}

type cardsCursor struct {
	Limit     int    `json:"limit"`
	UpdatedAt string `json:"updatedAt,omitempty"`
	NmID      int64  `json:"nmID,omitempty"`
}

type cardsResponse struct {
	Cards  []Card      `json:"cards"`
	Cursor *pageCursor `json:"cursor"`
}

type pageCursor struct {
	UpdatedAt string `json:"updatedAt"`
	NmID      int64  `json:"nmID"`
	Total     int    `json:"total"`
}

// Card is one product card from the content API.
type Card struct {
	NmID            int64            `json:"nmID"`
	SubjectName     string           `json:"subjectName"`
	Description     string           `json:"description"`
	Characteristics []Characteristic `json:"characteristics"`
	Photos          []CardPhoto      `json:"photos"`
}

type Characteristic struct {
	Name  string   `json:"name"`
	Value []string `json:"value"`
}

type CardPhoto struct {
	Big string `json:"big"`
}

type answerFeedbackRequest struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type answerQuestionRequest struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	WasViewed bool   `json:"wasViewed"`
}
