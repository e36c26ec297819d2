// internal/server/page.go
package server

// chatPage is the minimal single-file chat UI served at /. It posts to
// /api/chat and renders the answer, keeping the conversation id across turns.
const chatPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Flight Concierge</title>
<style>
  body { font-family: system-ui, sans-serif; max-width: 720px; margin: 2rem auto; padding: 0 1rem; background: #f7f7f9; }
  h1 { font-size: 1.3rem; }
  #log { background: #fff; border: 1px solid #ddd; border-radius: 8px; padding: 1rem; min-height: 320px; max-height: 60vh; overflow-y: auto; }
  .msg { margin: .5rem 0; padding: .5rem .75rem; border-radius: 8px; white-space: pre-wrap; }
  .user { background: #e3f0ff; text-align: right; }
  .bot { background: #f0f0f0; }
  .err { background: #ffe3e3; }
  form { display: flex; gap: .5rem; margin-top: 1rem; }
  input { flex: 1; padding: .6rem; border: 1px solid #ccc; border-radius: 8px; }
  button { padding: .6rem 1.2rem; border: none; border-radius: 8px; background: #2563eb; color: #fff; cursor: pointer; }
  button:disabled { background: #9bb6ee; }
</style>
</head>
<body>
<h1>Flight Concierge</h1>
<div id="log"></div>
<form id="form">
  <input id="input" placeholder="e.g. List flights from CAI to LHR on 2025-03-01, price weight 5" autocomplete="off">
  <button id="send" type="submit">Send</button>
</form>
<script>
let conversationId = "";
const log = document.getElementById("log");
const form = document.getElementById("form");
const input = document.getElementById("input");
const send = document.getElementById("send");

function append(text, cls) {
  const div = document.createElement("div");
  div.className = "msg " + cls;
  div.textContent = text;
  log.appendChild(div);
  log.scrollTop = log.scrollHeight;
}

form.addEventListener("submit", async (e) => {
  e.preventDefault();
  const message = input.value.trim();
  if (!message) return;
  append(message, "user");
  input.value = "";
  send.disabled = true;
  try {
    const resp = await fetch("/api/chat", {
      method: "POST",
      headers: { "Content-Type": "application/json" },
      body: JSON.stringify({ message, conversationId }),
    });
    const body = await resp.json();
    if (!resp.ok) {
      append(body.error || "Request failed", "err");
    } else {
      conversationId = body.conversationId;
      append(body.answer, "bot");
    }
  } catch (err) {
    append("Network error: " + err, "err");
  } finally {
    send.disabled = false;
    input.focus();
  }
});
</script>
</body>
</html>`
