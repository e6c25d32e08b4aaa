// Package quiz holds the proficiency quiz and its scoring.
package quiz

// Question is a single multiple-choice question.
type Question struct {
	ID      string            `json:"id"`
	Text    string            `json:"text"`
	Options map[string]string `json:"options"`
	Topic   string            `json:"topic"`

	correct string
}

// Correct returns the key of the correct option.
func (q Question) Correct() string { return q.correct }

// OptionKeys are the accepted answer keys, in display order.
var OptionKeys = []string{"a", "b", "c", "d"}

var bank = []Question{
	{
		ID:      "1",
		Text:    "What is the correct file extension for Python files?",
		Options: map[string]string{"a": ".pyth", "b": ".pt", "c": ".py", "d": ".pyt"},
		Topic:   "Python syntax and file handling",
		correct: "c",
	},
	{
		ID:      "2",
		Text:    "What is the output of print(3 + 2 * 2)?",
		Options: map[string]string{"a": "10", "b": "7", "c": "12", "d": "9"},
		Topic:   "Python operator precedence",
		correct: "b",
	},
	{
		ID:      "3",
		Text:    "Which data structure stores key-value pairs?",
		Options: map[string]string{"a": "List", "b": "Set", "c": "Tuple", "d": "Dictionary"},
		Topic:   "Python data structures - Dictionary",
		correct: "d",
	},
	{
		ID:      "4",
		Text:    "Which library is used for numerical computing?",
		Options: map[string]string{"a": "NumPy", "b": "Seaborn", "c": "Flask", "d": "BeautifulSoup"},
		Topic:   "Numerical computing with NumPy",
		correct: "a",
	},
	{
		ID:   "5",
		Text: "Purpose of the fit() method in ML?",
		Options: map[string]string{
			"a": "It trains the model",
			"b": "It tests the model",
			"c": "It saves the model",
			"d": "It visualizes the model",
		},
		Topic:   "Machine learning model training concepts",
		correct: "a",
	},
	{
		ID:   "6",
		Text: "What does 'self' refer to in a class method?",
		Options: map[string]string{
			"a": "The method name",
			"b": "The class itself",
			"c": "An instance of the class",
			"d": "A global variable",
		},
		Topic:   "OOP and class methods in Python",
		correct: "c",
	},
	{
		ID:      "7",
		Text:    "Activation function for non-linearity in DNN?",
		Options: map[string]string{"a": "Sigmoid", "b": "ReLU", "c": "Tanh", "d": "All of the above"},
		Topic:   "Deep learning activation functions",
		correct: "d",
	},
	{
		ID:   "8",
		Text: "Technique to prevent overfitting in NNs?",
		Options: map[string]string{
			"a": "Batch normalization",
			"b": "Regularization",
			"c": "Dropout",
			"d": "Backpropagation",
		},
		Topic:   "Overfitting and regularization techniques",
		correct: "c",
	},
	{
		ID:   "9",
		Text: "Purpose of gradient descent?",
		Options: map[string]string{
			"a": "Making decisions",
			"b": "Optimizing parameters",
			"c": "Increasing complexity",
			"d": "Normalizing dataset",
		},
		Topic:   "Gradient descent and optimization in ML",
		correct: "b",
	},
	{
		ID:   "10",
		Text: "Main difference: supervised vs unsupervised learning?",
		Options: map[string]string{
			"a": "Supervised doesn't use labels",
			"b": "Supervised is faster",
			"c": "Supervised uses labels",
			"d": "No difference",
		},
		Topic:   "Difference between supervised and unsupervised learning",
		correct: "c",
	},
}

// Questions returns the quiz in order. The slice is a copy.
func Questions() []Question {
	return append([]Question(nil), bank...)
}

// Len is the number of questions, which is also the maximum score.
func Len() int { return len(bank) }
