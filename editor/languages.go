// Package editor backs the collaborative-editor demo: sessions, their starter code and
// the (static) list of people shown as present.
package editor

import (
	"slices"
	"strings"
)

// Language is one editor language and the code a new session starts with.
type Language struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Placeholder string `json:"-"`
}

var Languages = []Language{
	{ID: "javascript", Name: "JavaScript", Placeholder: `// Welcome to your collaborative JavaScript session!
function greet(name) {
  console.log('Hello, ' + name + '!');
}

greet('World');`},
	{ID: "python", Name: "Python", Placeholder: `# Welcome to your collaborative Python session!
def greet(name):
    print(f"Hello, {name}!")

greet("World")`},
	{ID: "java", Name: "Java", Placeholder: `// Welcome to your collaborative Java session!
class HelloWorld {
    public static void main(String[] args) {
        System.out.println("Hello, World!");
    }
}`},
	{ID: "typescript", Name: "TypeScript", Placeholder: `// Welcome to your collaborative TypeScript session!
function greet(name: string): void {
  console.log('Hello, ' + name + '!');
}

greet('World');`},
	{ID: "html", Name: "HTML", Placeholder: `<!-- Welcome to your collaborative HTML session! -->
<!DOCTYPE html>
<html>
<head>
  <title>CollabCode</title>
</head>
<body>
  <h1>Hello, World!</h1>
</body>
</html>`},
	{ID: "css", Name: "CSS", Placeholder: `/* Welcome to your collaborative CSS session! */
body {
  font-family: sans-serif;
  background-color: #f0f0f0;
}

h1 {
  color: #333;
}`},
}

// DefaultLanguage is used when a session is created without one.
const DefaultLanguage = "javascript"

// LanguageByID matches case-insensitively.
func LanguageByID(id string) (Language, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	i := slices.IndexFunc(Languages, func(l Language) bool { return l.ID == id })
	if i < 0 {
		return Language{}, false
	}
	return Languages[i], true
}

type User struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	AvatarURL string `json:"avatarUrl"`
}

// Users is who every session shows as online. There is no real presence tracking.
var Users = []User{
	{ID: 1, Name: "Alice", Color: "#ef4444", AvatarURL: "https://picsum.photos/40/40?random=1"},
	{ID: 2, Name: "Bob", Color: "#3b82f6", AvatarURL: "https://picsum.photos/40/40?random=2"},
	{ID: 3, Name: "Charlie", Color: "#22c55e", AvatarURL: "https://picsum.photos/40/40?random=3"},
	{ID: 4, Name: "You", Color: "#8b5cf6", AvatarURL: "https://picsum.photos/40/40?random=4"},
}
