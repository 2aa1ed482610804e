package server

const indexPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>LegalEase</title>
<style>
body { font-family: sans-serif; max-width: 52rem; margin: 2rem auto; padding: 0 1rem; }
#log > div { border-top: 1px solid #ddd; padding: .75rem 0; }
.user { font-weight: bold; }
textarea { width: 100%; }
</style>
</head>
<body>
<h1>LegalEase</h1>
<p>Upload a legal document (PDF) and ask questions about it in any language.</p>

<form id="upload">
  <input type="file" name="file" accept="application/pdf">
  <button type="submit">Upload</button>
  <span id="doc"></span>
</form>

<div id="log"></div>

<form id="ask">
  <textarea name="question" rows="3" placeholder="Ask a question about the document"></textarea>
  <button type="submit">Ask</button>
  <button type="button" id="reset">Reset conversation</button>
</form>

<script>
let sid = null;

async function call(method, path, body) {
  const opts = { method };
  if (body instanceof FormData) {
    opts.body = body;
  } else if (body) {
    opts.headers = { "Content-Type": "application/json" };
    opts.body = JSON.stringify(body);
  }
  const res = await fetch(path, opts);
  const data = await res.json();
  if (!res.ok) throw new Error(data.error || res.statusText);
  return data;
}

async function session() {
  if (!sid) sid = (await call("POST", "/api/session")).session_id;
  return sid;
}

function add(cls, html) {
  const div = document.createElement("div");
  div.className = cls;
  div.innerHTML = html;
  document.getElementById("log").appendChild(div);
}

function text(s) {
  const d = document.createElement("div");
  d.textContent = s;
  return d.innerHTML;
}

document.getElementById("upload").onsubmit = async (ev) => {
  ev.preventDefault();
  try {
    const id = await session();
    const data = await call("POST", "/api/session/" + id + "/document", new FormData(ev.target));
    document.getElementById("doc").textContent = data.document.name + " (" + data.document.language + ")";
    document.getElementById("log").innerHTML = "";
  } catch (err) {
    add("error", text(err.message));
  }
};

document.getElementById("ask").onsubmit = async (ev) => {
  ev.preventDefault();
  const q = ev.target.question.value;
  add("user", text(q));
  try {
    const id = await session();
    const data = await call("POST", "/api/session/" + id + "/ask", { question: q });
    add("assistant", data.html);
    ev.target.question.value = "";
  } catch (err) {
    add("error", text(err.message));
  }
};

document.getElementById("reset").onclick = async () => {
  if (!sid) return;
  await call("POST", "/api/session/" + sid + "/reset");
  document.getElementById("log").innerHTML = "";
};
</script>
</body>
</html>
`
