package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// uiHTML is the built-in chat page: a minimal client for manual testing
// against /text and /tts.
const uiHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Bank Islami Assistant</title>
<style>
  body { font-family: system-ui, sans-serif; margin: 0; background: #f4f6f8; }
  header { background: #00683f; color: #fff; padding: 14px 20px; font-size: 18px; }
  #chat { max-width: 640px; margin: 0 auto; padding: 16px; }
  #log { min-height: 300px; }
  .msg { margin: 8px 0; padding: 10px 14px; border-radius: 10px; max-width: 80%; }
  .user { background: #d3eadd; margin-left: auto; }
  .bot { background: #fff; border: 1px solid #ddd; }
  form { display: flex; gap: 8px; margin-top: 12px; }
  input { flex: 1; padding: 10px; border: 1px solid #ccc; border-radius: 8px; }
  button { padding: 10px 18px; border: 0; border-radius: 8px; background: #00683f; color: #fff; cursor: pointer; }
</style>
</head>
<body>
<header>Bank Islami Assistant</header>
<div id="chat">
  <div id="log"></div>
  <form id="form">
    <input id="input" placeholder="Apna sawal likhein..." autocomplete="off">
    <button type="submit">Send</button>
  </form>
</div>
<script>
const log = document.getElementById("log");
const form = document.getElementById("form");
const input = document.getElementById("input");

function add(text, cls) {
  const div = document.createElement("div");
  div.className = "msg " + cls;
  div.textContent = text;
  log.appendChild(div);
  div.scrollIntoView();
}

form.addEventListener("submit", async (e) => {
  e.preventDefault();
  const text = input.value.trim();
  if (!text) return;
  add(text, "user");
  input.value = "";
  try {
    const resp = await fetch("/text", {
      method: "POST",
      headers: {"Content-Type": "application/json"},
      body: JSON.stringify({text})
    });
    const data = await resp.json();
    add(data.text || data.error || "No reply", "bot");
    if (data.text) {
      new Audio("/tts?text=" + encodeURIComponent(data.text)).play().catch(() => {});
    }
  } catch (err) {
    add("Request failed: " + err, "bot");
  }
});
</script>
</body>
</html>`

// UIHandler serves the built-in chat page.
type UIHandler struct{}

// NewUIHandler creates the UI handler.
func NewUIHandler() *UIHandler {
	return &UIHandler{}
}

// Index serves the chat page.
func (h *UIHandler) Index(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(uiHTML)
}
